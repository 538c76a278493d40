package manifest

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/config"
)

// Target describes the namespace manifests are generated for.
type Target struct {
	Namespace   string
	Labels      map[string]string
	Annotations map[string]string
}

// Source produces the desired children for a namespace.
//
// Implementations re-read the folder on every call; nothing is cached.
type Source interface {
	// Generate returns the manifests for target. Any malformed file aborts the
	// whole generation with a *ParseError.
	Generate(target Target) ([]*unstructured.Unstructured, error)

	// DesiredCounts returns the number of manifest files per tracked kind.
	// A kind is tracked when its subdirectory exists in the folder.
	DesiredCounts() (map[api.KindID]int, error)

	// Files lists the manifest files generation would read, in lexical order.
	Files() ([]string, error)

	// Validate reports the first manifest that can never be generated. Problems
	// that depend on the labels or annotations of a namespace are not detected.
	Validate() error
}

// validationNamespace is the namespace static manifests are validated for.
const validationNamespace = "manifest-validation"

// Options configures a Source.
type Options struct {
	Folder   string
	Strategy config.Strategy
	Kinds    []config.KindMapping
}

// New creates the Source for the configured strategy.
func New(opts Options) (Source, error) {
	switch opts.Strategy {
	case config.StrategyStatic, "":
		return NewStaticSource(opts.Folder, opts.Kinds), nil
	case config.StrategyTemplate:
		return NewTemplateSource(opts.Folder, opts.Kinds), nil
	default:
		return nil, fmt.Errorf("unknown manifest strategy %q", opts.Strategy)
	}
}

func validate(s Source) error {
	if _, err := s.DesiredCounts(); err != nil {
		return err
	}
	_, err := s.Generate(Target{Namespace: validationNamespace})
	return err
}
