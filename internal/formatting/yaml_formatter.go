package formatting

import (
	"io"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	sigsyaml "sigs.k8s.io/yaml"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// WriteManifests writes one YAML document per manifest, separated by "---".
func (f *YAMLFormatter) WriteManifests(w io.Writer, manifests []*unstructured.Unstructured) error {
	for i, m := range manifests {
		data, err := sigsyaml.Marshal(m.Object)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport writes the report as a YAML document.
func (f *YAMLFormatter) WriteReport(w io.Writer, report Report) error {
	if report.Kinds == nil {
		report.Kinds = []KindStatus{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}
