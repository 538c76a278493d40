// Package formatting renders generated manifests and readiness reports for
// the command line, as YAML, JSON or a table.
package formatting

import (
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"resource-dispatcher/internal/api"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatYAML  OutputFormat = "yaml"  // Multi-document YAML, ready for kubectl apply
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatTable OutputFormat = "table" // Rich table output
)

// ParseOutputFormat validates a user supplied format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatYAML, FormatJSON, FormatTable:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected yaml, json or table)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
}

// KindStatus compares the desired and observed children of one kind.
type KindStatus struct {
	Kind     api.KindID `json:"kind" yaml:"kind"`
	Desired  int        `json:"desired" yaml:"desired"`
	Observed int        `json:"observed" yaml:"observed"`
}

// Ready reports whether the observed count matches the desired count.
func (k KindStatus) Ready() bool {
	return k.Desired == k.Observed
}

// Report summarizes the readiness of a namespace, or of the manifest folder
// alone when Namespace is empty. Manifests counts generated children, or
// manifest files for a folder report.
type Report struct {
	Namespace string       `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Folder    string       `json:"folder" yaml:"folder"`
	Manifests int          `json:"manifests" yaml:"manifests"`
	Kinds     []KindStatus `json:"kinds" yaml:"kinds"`
	Ready     bool         `json:"ready" yaml:"ready"`

	// Gated is set when the namespace does not carry the gate label, so no
	// children would be generated for it.
	Gated bool `json:"gated,omitempty" yaml:"gated,omitempty"`
}

// Formatter writes manifests and reports in one output format.
type Formatter interface {
	WriteManifests(w io.Writer, manifests []*unstructured.Unstructured) error
	WriteReport(w io.Writer, report Report) error
}

// New creates the formatter for options.Format. Unknown formats fall back to YAML.
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{options: options}
	case FormatTable:
		return &TableFormatter{options: options}
	case FormatYAML:
		fallthrough
	default:
		return &YAMLFormatter{options: options}
	}
}
