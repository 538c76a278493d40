package template

// Context holds the values a manifest template is rendered with.
type Context map[string]interface{}

// Context keys provided for every parent namespace.
const (
	KeyNamespace   = "namespace"
	KeyName        = "name"
	KeyLabels      = "labels"
	KeyAnnotations = "annotations"
)

// NewNamespaceContext builds the rendering context for a target namespace.
// name is the same as namespace since the parent resource is the namespace itself.
func NewNamespaceContext(namespace string, labels, annotations map[string]string) Context {
	if labels == nil {
		labels = map[string]string{}
	}
	if annotations == nil {
		annotations = map[string]string{}
	}
	return Context{
		KeyNamespace:   namespace,
		KeyName:        namespace,
		KeyLabels:      labels,
		KeyAnnotations: annotations,
	}
}
