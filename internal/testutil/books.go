// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// WritePage writes a blank w x h page image to path, creating parent
// directories. The format follows the file extension.
func WritePage(t *testing.T, path string, w, h int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create page dir: %v", err)
	}
	img := imaging.New(w, h, color.White)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to write page %s: %v", path, err)
	}
}

// WriteBook creates root/name holding pages PNG images named 0001.png,
// 0002.png and so on. It returns the book directory.
func WriteBook(t *testing.T, root, name string, pages, w, h int) string {
	t.Helper()

	dir := filepath.Join(root, name)
	for i := 1; i <= pages; i++ {
		WritePage(t, filepath.Join(dir, fmt.Sprintf("%04d.png", i)), w, h)
	}
	return dir
}
