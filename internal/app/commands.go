package app

import (
	"context"
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/config"
	"resource-dispatcher/internal/formatting"
	"resource-dispatcher/internal/manifest"
	"resource-dispatcher/internal/reconciler"
	"resource-dispatcher/pkg/logging"
)

// Render generates the children the webhook would return for namespace,
// without checking the gate label.
func Render(cfg *config.Config, namespace string, labels map[string]string) ([]*unstructured.Unstructured, error) {
	source, err := NewSource(cfg)
	if err != nil {
		return nil, err
	}
	return source.Generate(manifest.Target{Namespace: namespace, Labels: labels})
}

// Check validates the manifest folder and reports the desired count of every
// tracked kind. Manifests are not generated, so templates that need namespace
// labels or annotations are checked too.
func Check(cfg *config.Config) (formatting.Report, error) {
	source, err := NewSource(cfg)
	if err != nil {
		return formatting.Report{}, err
	}
	if err := source.Validate(); err != nil {
		return formatting.Report{}, err
	}

	desired, err := source.DesiredCounts()
	if err != nil {
		return formatting.Report{}, err
	}
	files, err := source.Files()
	if err != nil {
		return formatting.Report{}, err
	}

	// A folder-only report has nothing observed; a valid folder counts as ready.
	report := formatting.BuildReport("", cfg.Folder, len(files), desired, nil)
	report.Ready = true
	return report, nil
}

// ChildrenReader provides the sync request for a namespace, typically from a
// live cluster. *client.Inspector implements it.
type ChildrenReader interface {
	SyncRequest(ctx context.Context, namespace string, kinds []api.KindID) (*api.SyncRequest, error)
}

// Inspect evaluates namespace against the state returned by reader, exactly
// as the webhook would, and reports the comparison.
func Inspect(ctx context.Context, cfg *config.Config, reader ChildrenReader, namespace string) (formatting.Report, error) {
	source, err := NewSource(cfg)
	if err != nil {
		return formatting.Report{}, err
	}

	desired, err := source.DesiredCounts()
	if err != nil {
		return formatting.Report{}, err
	}
	kinds := make([]api.KindID, 0, len(desired))
	for kind := range desired {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	req, err := reader.SyncRequest(ctx, namespace, kinds)
	if err != nil {
		return formatting.Report{}, err
	}

	engine := reconciler.NewEngine(reconciler.Config{
		Label:              cfg.Label,
		ResyncAfterSeconds: cfg.ResyncAfterSeconds,
	}, source)
	result, err := engine.Sync(req.Parent, req.Children)
	if err != nil {
		return formatting.Report{}, err
	}

	if _, evaluated := result.Status[api.ResourcesReadyKey]; !evaluated {
		logging.Warn("Inspect", "Namespace %s does not have %s=true", namespace, engine.Label())
		return formatting.Report{Namespace: namespace, Folder: cfg.Folder, Gated: true}, nil
	}

	observed := make(map[api.KindID]int, len(req.Children))
	for kind, objects := range req.Children {
		observed[kind] = len(objects)
	}
	report := formatting.BuildReport(namespace, cfg.Folder, len(result.Children), desired, observed)
	report.Ready = result.Ready()
	return report, nil
}
