// Package reconciler evaluates composite-controller sync requests.
//
// # Overview
//
// For every sync request the Engine:
//
//  1. Checks the parent's gate label; anything but "true" yields an empty
//     result and no children.
//  2. Generates the desired children from the manifest Source for the
//     parent's namespace.
//  3. Compares the observed child counts with the desired counts of each
//     tracked kind and reports resources-ready.
//
// While the children are not ready the result asks the controller to call
// back after Config.ResyncAfterSeconds.
//
// # Watching
//
// ManifestWatcher uses fsnotify to re-validate the manifest folder after
// changes. It does not feed the Engine; it only reports broken manifests
// before a sync request hits them.
//
// # Metrics
//
// Sync outcomes, latency, desired counts and manifest validity are
// registered on the controller-runtime metrics registry.
package reconciler
