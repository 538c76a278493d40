// Package client reads a live cluster to reproduce the sync request the
// composite controller would send for a namespace.
//
// The Inspector fetches the Namespace as the parent and lists the objects of
// every tracked kind in it as the observed children. It only reads; nothing
// is created, updated or deleted.
//
// Configuration is detected the controller-runtime way (in-cluster config,
// $KUBECONFIG, ~/.kube/config) unless an explicit kubeconfig path is given.
package client
