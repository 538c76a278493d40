package manifest

import (
	"os"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/config"
	"resource-dispatcher/pkg/logging"
)

// StaticSource serves YAML manifests as they are on disk, only setting
// metadata.namespace to the target namespace.
type StaticSource struct {
	layout layout
}

// NewStaticSource creates a Source reading *.yaml and *.yml files from folder.
func NewStaticSource(folder string, kinds []config.KindMapping) *StaticSource {
	return &StaticSource{
		layout: layout{
			folder:     folder,
			extensions: []string{".yaml", ".yml"},
			kinds:      kinds,
		},
	}
}

// Generate implements Source.
func (s *StaticSource) Generate(target Target) ([]*unstructured.Unstructured, error) {
	files, err := s.layout.files()
	if err != nil {
		return nil, err
	}
	logging.Debug("Manifest", "Found %d manifest files in %s", len(files), s.layout.folder)

	manifests := make([]*unstructured.Unstructured, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		objects, err := decodeDocuments(data)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		for _, obj := range objects {
			obj.SetNamespace(target.Namespace)
			manifests = append(manifests, obj)
		}
	}
	return manifests, nil
}

// DesiredCounts implements Source.
func (s *StaticSource) DesiredCounts() (map[api.KindID]int, error) {
	return s.layout.desiredCounts()
}

// Files implements Source.
func (s *StaticSource) Files() ([]string, error) {
	return s.layout.files()
}

// Validate implements Source. Static manifests do not depend on the target,
// so a generation for any namespace covers every file.
func (s *StaticSource) Validate() error {
	if err := s.layout.checkFolder(); err != nil {
		return err
	}
	return validate(s)
}
