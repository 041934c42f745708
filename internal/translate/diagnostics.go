package translate

import "fmt"

// Severity grades a diagnostic.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
)

// Diagnostic codes.
const (
	CodeMalformedPosition = "malformed_position"
	CodeInvertedPosition  = "inverted_position"
	CodeBelowMinSize      = "below_min_size"
	CodeDuplicateType     = "duplicate_type"
	CodeGlobalFallback    = "global_fallback"
)

// Diagnostic records something the translator changed or dropped while
// producing parameters. Lenient translation never loses input silently.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Region   string   `json:"region,omitempty" yaml:"region,omitempty"`
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.ID != "" {
		return fmt.Sprintf("%s %s[%s]: %s", d.Severity, d.Region, d.ID, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Region, d.Message)
}
