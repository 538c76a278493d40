package formatting

import (
	"encoding/json"
	"fmt"
	"sort"

	"resource-dispatcher/internal/api"
)

// PrettyJSON formats v as JSON indented by two spaces, falling back to %v
// when v cannot be marshaled.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// BuildReport assembles a Report from desired and observed counts. Kinds are
// sorted; a kind without an observed count is reported with zero.
func BuildReport(namespace, folder string, manifests int, desired, observed map[api.KindID]int) Report {
	report := Report{
		Namespace: namespace,
		Folder:    folder,
		Manifests: manifests,
		Kinds:     make([]KindStatus, 0, len(desired)),
		Ready:     true,
	}
	for kind, want := range desired {
		status := KindStatus{Kind: kind, Desired: want, Observed: observed[kind]}
		if !status.Ready() {
			report.Ready = false
		}
		report.Kinds = append(report.Kinds, status)
	}
	sort.Slice(report.Kinds, func(i, j int) bool { return report.Kinds[i].Kind < report.Kinds[j].Kind })
	return report
}
