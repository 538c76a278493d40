package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/pkg/logging"
)

// Inspector builds sync requests from cluster state.
type Inspector struct {
	reader client.Reader
}

// NewInspector creates an Inspector reading through reader.
func NewInspector(reader client.Reader) *Inspector {
	return &Inspector{reader: reader}
}

// NewKubernetesInspector creates an Inspector for the cluster selected by
// kubeconfig, or by the standard detection when kubeconfig is empty.
func NewKubernetesInspector(kubeconfig string) (*Inspector, error) {
	restConfig, err := detectKubernetesConfig(kubeconfig)
	if err != nil {
		return nil, err
	}

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	k8sClient, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	return NewInspector(k8sClient), nil
}

func detectKubernetesConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}
		return restConfig, nil
	}

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get Kubernetes config: %w", err)
	}
	return restConfig, nil
}

// Parent fetches the Namespace named namespace as a sync parent.
func (i *Inspector) Parent(ctx context.Context, namespace string) (*api.ParentResource, error) {
	ns := &corev1.Namespace{}
	if err := i.reader.Get(ctx, client.ObjectKey{Name: namespace}, ns); err != nil {
		return nil, fmt.Errorf("failed to get namespace %s: %w", namespace, err)
	}
	return &api.ParentResource{Metadata: ns.ObjectMeta}, nil
}

// ObservedChildren lists the objects of each kind in namespace.
func (i *Inspector) ObservedChildren(ctx context.Context, namespace string, kinds []api.KindID) (api.ObservedChildren, error) {
	children := make(api.ObservedChildren, len(kinds))
	for _, kind := range kinds {
		gvk, err := kind.GroupVersionKind()
		if err != nil {
			return nil, err
		}

		list := &unstructured.UnstructuredList{}
		list.SetGroupVersionKind(gvk.GroupVersion().WithKind(gvk.Kind + "List"))
		if err := i.reader.List(ctx, list, client.InNamespace(namespace)); err != nil {
			return nil, fmt.Errorf("failed to list %s in %s: %w", kind, namespace, err)
		}

		objects := make(api.ObservedObjects, 0, len(list.Items))
		for idx := range list.Items {
			raw, err := json.Marshal(list.Items[idx].Object)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s %s: %w", kind, list.Items[idx].GetName(), err)
			}
			objects = append(objects, raw)
		}
		logging.Debug("Inspector", "Observed %d %s in %s", len(objects), kind, namespace)
		children[kind] = objects
	}
	return children, nil
}

// SyncRequest assembles the request the controller would send for namespace
// with the given tracked kinds.
func (i *Inspector) SyncRequest(ctx context.Context, namespace string, kinds []api.KindID) (*api.SyncRequest, error) {
	parent, err := i.Parent(ctx, namespace)
	if err != nil {
		return nil, err
	}

	sorted := append([]api.KindID(nil), kinds...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })

	children, err := i.ObservedChildren(ctx, namespace, sorted)
	if err != nil {
		return nil, err
	}
	return &api.SyncRequest{Parent: parent, Children: children}, nil
}
