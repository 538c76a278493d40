package manifest

import (
	"os"
	"path/filepath"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/config"
	"resource-dispatcher/internal/template"
	"resource-dispatcher/pkg/logging"
)

// TemplateSource renders *.j2 templates with the target namespace context
// and parses the result as YAML.
type TemplateSource struct {
	layout layout
	engine *template.Engine
}

// NewTemplateSource creates a Source rendering the templates in folder.
func NewTemplateSource(folder string, kinds []config.KindMapping) *TemplateSource {
	return &TemplateSource{
		layout: layout{
			folder:     folder,
			extensions: []string{".j2"},
			kinds:      kinds,
		},
		engine: template.New(),
	}
}

// Generate implements Source. A rendered manifest keeps an explicit
// metadata.namespace; otherwise the target namespace is filled in.
func (s *TemplateSource) Generate(target Target) ([]*unstructured.Unstructured, error) {
	files, err := s.layout.files()
	if err != nil {
		return nil, err
	}
	logging.Debug("Manifest", "Found %d template files in %s", len(files), s.layout.folder)

	ctx := template.NewNamespaceContext(target.Namespace, target.Labels, target.Annotations)

	manifests := make([]*unstructured.Unstructured, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		rendered, err := s.engine.Render(filepath.Base(path), string(data), ctx)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		objects, err := decodeDocuments([]byte(rendered))
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		for _, obj := range objects {
			if obj.GetNamespace() == "" {
				obj.SetNamespace(target.Namespace)
			}
			manifests = append(manifests, obj)
		}
	}
	return manifests, nil
}

// DesiredCounts implements Source.
func (s *TemplateSource) DesiredCounts() (map[api.KindID]int, error) {
	return s.layout.desiredCounts()
}

// Files implements Source.
func (s *TemplateSource) Files() ([]string, error) {
	return s.layout.files()
}

// Validate implements Source. Templates are parsed but not executed: their
// output depends on the labels and annotations of each namespace.
func (s *TemplateSource) Validate() error {
	if err := s.layout.checkFolder(); err != nil {
		return err
	}
	if _, err := s.layout.desiredCounts(); err != nil {
		return err
	}
	files, err := s.layout.files()
	if err != nil {
		return err
	}

	keys := template.NewNamespaceContext("", nil, nil)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return &ParseError{Path: path, Err: err}
		}
		if err := s.engine.Parse(filepath.Base(path), string(data), keys); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	}
	return nil
}
