package formatting

import (
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// WriteManifests writes the manifests as a v1 List.
func (f *JSONFormatter) WriteManifests(w io.Writer, manifests []*unstructured.Unstructured) error {
	items := make([]interface{}, 0, len(manifests))
	for _, m := range manifests {
		items = append(items, m.Object)
	}
	list := map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "List",
		"items":      items,
	}
	_, err := fmt.Fprintln(w, PrettyJSON(list))
	return err
}

// WriteReport writes the report as a JSON object.
func (f *JSONFormatter) WriteReport(w io.Writer, report Report) error {
	if report.Kinds == nil {
		report.Kinds = []KindStatus{}
	}
	_, err := fmt.Fprintln(w, PrettyJSON(report))
	return err
}
