package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourcesReadyKey is the status key reporting whether the observed children
// match the desired children.
const ResourcesReadyKey = "resources-ready"

// Readiness values as they appear on the wire. The calling controller expects
// strings, not JSON booleans.
const (
	ReadyTrue  = "True"
	ReadyFalse = "False"
)

// KindID identifies a child resource kind in the sync hook wire format,
// e.g. "Secret.v1" or "Deployment.apps/v1".
type KindID string

// NewKindID builds the wire identifier for a GroupVersionKind.
func NewKindID(gvk schema.GroupVersionKind) KindID {
	return KindID(gvk.Kind + "." + gvk.GroupVersion().String())
}

// GroupVersionKind parses the identifier back into its GroupVersionKind.
func (k KindID) GroupVersionKind() (schema.GroupVersionKind, error) {
	kind, version, found := strings.Cut(string(k), ".")
	if !found || kind == "" || version == "" {
		return schema.GroupVersionKind{}, fmt.Errorf("invalid kind identifier %q: expected <Kind>.<apiVersion>", k)
	}
	gv, err := schema.ParseGroupVersion(version)
	if err != nil {
		return schema.GroupVersionKind{}, fmt.Errorf("invalid kind identifier %q: %w", k, err)
	}
	return gv.WithKind(kind), nil
}

// String returns the wire form of the identifier.
func (k KindID) String() string {
	return string(k)
}

// ParentResource is the watched resource whose labels gate reconciliation.
// Only metadata is read; the rest of the object is ignored.
type ParentResource struct {
	Metadata metav1.ObjectMeta `json:"metadata"`
}

// ObservedObjects is the list of observed objects of one kind. The objects are
// kept opaque because only their count is relevant.
type ObservedObjects []json.RawMessage

// UnmarshalJSON accepts either a JSON array of objects or a JSON object keyed
// by child name. null decodes to an empty list.
func (o *ObservedObjects) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = ObservedObjects{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*o = items
		return nil
	case '{':
		var byName map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &byName); err != nil {
			return err
		}
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
		items := make(ObservedObjects, 0, len(names))
		for _, name := range names {
			items = append(items, byName[name])
		}
		*o = items
		return nil
	default:
		return fmt.Errorf("observed children must be a list or a map, got %q", string(trimmed[:1]))
	}
}

// ObservedChildren maps each child kind to the objects currently observed
// in the parent's namespace.
type ObservedChildren map[KindID]ObservedObjects

// SyncRequest is the body the composite controller posts to the sync hook.
type SyncRequest struct {
	Parent   *ParentResource  `json:"parent"`
	Children ObservedChildren `json:"children"`
}

// Validate checks that the fields the sync hook depends on are present.
func (r *SyncRequest) Validate() error {
	if r.Parent == nil {
		return &MalformedRequestError{Reason: "missing parent"}
	}
	if r.Children == nil {
		return &MalformedRequestError{Reason: "missing children"}
	}
	return nil
}

// SyncResult is the desired state returned to the composite controller.
type SyncResult struct {
	Status             map[string]string            `json:"status"`
	Children           []*unstructured.Unstructured `json:"children"`
	ResyncAfterSeconds int                          `json:"resyncAfterSeconds,omitempty"`
}

// EmptyResult is the result for a parent outside the dispatcher's scope.
func EmptyResult() *SyncResult {
	return &SyncResult{
		Status:   map[string]string{},
		Children: []*unstructured.Unstructured{},
	}
}

// Ready reports whether the result declares the children as converged.
func (r *SyncResult) Ready() bool {
	return r.Status[ResourcesReadyKey] == ReadyTrue
}
