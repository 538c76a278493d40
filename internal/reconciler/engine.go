package reconciler

import (
	"fmt"
	"sort"
	"time"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/manifest"
	"resource-dispatcher/pkg/logging"
)

// Engine answers sync requests: it decides whether a parent is in scope,
// generates its desired children and reports whether the observed children
// have caught up.
//
// The Engine keeps no state between calls, so it is safe for concurrent use
// as long as its Source is.
type Engine struct {
	config Config
	source manifest.Source
}

// NewEngine creates an Engine generating children from source.
func NewEngine(cfg Config, source manifest.Source) *Engine {
	return &Engine{
		config: cfg.withDefaults(),
		source: source,
	}
}

// Label returns the label gating reconciliation.
func (e *Engine) Label() string {
	return e.config.Label
}

// Sync evaluates a single sync request.
//
// A parent whose gate label is not exactly "true" gets an empty result. For
// an in-scope parent the result carries every generated manifest and the
// readiness of the tracked kinds; resyncAfterSeconds is set only while the
// children are not ready.
//
// Errors are *api.MalformedRequestError when the request lacks data the
// evaluation depends on, or *manifest.ParseError when a manifest file cannot
// be turned into objects.
func (e *Engine) Sync(parent *api.ParentResource, children api.ObservedChildren) (*api.SyncResult, error) {
	start := time.Now()
	result, outcome, err := e.sync(parent, children)
	recordSync(outcome, time.Since(start))
	return result, err
}

func (e *Engine) sync(parent *api.ParentResource, children api.ObservedChildren) (*api.SyncResult, Outcome, error) {
	if parent == nil {
		return nil, OutcomeMalformed, &api.MalformedRequestError{Reason: "missing parent"}
	}

	namespace := parent.Metadata.Name
	logging.Info("Sync", "Got new request for namespace %q", namespace)

	if value := parent.Metadata.Labels[e.config.Label]; value != gateValue {
		logging.Info("Sync", "Namespace %q not in scope, no action taken (metadata.labels.%s = %q, must be %q)",
			namespace, e.config.Label, value, gateValue)
		return api.EmptyResult(), OutcomeGated, nil
	}

	if namespace == "" {
		return nil, OutcomeMalformed, &api.MalformedRequestError{Reason: "parent has no metadata.name"}
	}

	manifests, err := e.source.Generate(manifest.Target{
		Namespace:   namespace,
		Labels:      parent.Metadata.Labels,
		Annotations: parent.Metadata.Annotations,
	})
	if err != nil {
		logging.Error("Sync", err, "Failed to generate manifests for namespace %q", namespace)
		return nil, OutcomeError, err
	}

	desired, err := e.source.DesiredCounts()
	if err != nil {
		logging.Error("Sync", err, "Failed to count desired children")
		return nil, OutcomeError, fmt.Errorf("failed to count desired children: %w", err)
	}
	recordDesired(desired)

	observed, err := observedCounts(children, desired)
	if err != nil {
		return nil, OutcomeMalformed, err
	}

	ready := Evaluate(observed, desired)
	result := &api.SyncResult{
		Status:   map[string]string{api.ResourcesReadyKey: readyValue(ready)},
		Children: manifests,
	}
	outcome := OutcomeReady
	if !ready {
		result.ResyncAfterSeconds = e.config.ResyncAfterSeconds
		outcome = OutcomeNotReady
	}

	logging.Info("Sync", "Namespace %q: %d desired children, resources-ready=%s", namespace, len(manifests), readyValue(ready))
	for _, kind := range sortedKinds(desired) {
		logging.Debug("Sync", "Namespace %q: %s observed %d, desired %d", namespace, kind, observed[kind], desired[kind])
	}
	return result, outcome, nil
}

// observedCounts counts the observed objects of every tracked kind. A tracked
// kind must be present in children, even when empty.
func observedCounts(children api.ObservedChildren, desired map[api.KindID]int) (map[api.KindID]int, error) {
	if children == nil {
		return nil, &api.MalformedRequestError{Reason: "missing children"}
	}
	observed := make(map[api.KindID]int, len(desired))
	for _, kind := range sortedKinds(desired) {
		objects, ok := children[kind]
		if !ok {
			return nil, &api.MalformedRequestError{Reason: fmt.Sprintf("children has no entry for tracked kind %s", kind)}
		}
		observed[kind] = len(objects)
	}
	return observed, nil
}

func sortedKinds(counts map[api.KindID]int) []api.KindID {
	kinds := make([]api.KindID, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
