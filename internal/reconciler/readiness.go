package reconciler

import "resource-dispatcher/internal/api"

// Evaluate reports whether every tracked kind has exactly as many observed
// children as desired. Kinds absent from desired are not tracked and never
// affect the result; a tracked kind missing from observed counts as zero.
func Evaluate(observed, desired map[api.KindID]int) bool {
	for kind, want := range desired {
		if observed[kind] != want {
			return false
		}
	}
	return true
}

func readyValue(ready bool) string {
	if ready {
		return api.ReadyTrue
	}
	return api.ReadyFalse
}
