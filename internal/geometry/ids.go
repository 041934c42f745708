package geometry

import (
	"slices"
	"strconv"
	"strings"
)

// CompareIDs orders identities naturally: a shared text prefix is compared
// lexically and a trailing ordinal numerically, so "paragraph2" sorts before
// "paragraph10".
func CompareIDs(a, b string) int {
	ap, an, aok := splitOrdinal(a)
	bp, bn, bok := splitOrdinal(b)
	if c := strings.Compare(ap, bp); c != 0 {
		return c
	}
	switch {
	case aok && bok:
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	case aok:
		return 1
	case bok:
		return -1
	}
	return strings.Compare(a, b)
}

// SortedKeys returns the keys of m in CompareIDs order. Map iteration order
// is random, so every traversal that feeds ids or ordinals goes through here.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareIDs)
	return keys
}

func splitOrdinal(id string) (prefix string, n uint64, ok bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return id, 0, false
	}
	n, err := strconv.ParseUint(id[i:], 10, 64)
	if err != nil {
		return id, 0, false
	}
	return id[:i], n, true
}
