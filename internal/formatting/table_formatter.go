package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// WriteManifests lists the manifests one row each.
func (f *TableFormatter) WriteManifests(w io.Writer, manifests []*unstructured.Unstructured) error {
	if len(manifests) == 0 {
		return f.writeEmptyMessage(w, "No manifests generated")
	}

	t := f.createTable(w)
	t.AppendHeader(f.header("KIND", "API VERSION", "NAMESPACE", "NAME"))
	for _, m := range manifests {
		t.AppendRow(table.Row{m.GetKind(), m.GetAPIVersion(), m.GetNamespace(), m.GetName()})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(manifests)})
	t.Render()
	return nil
}

// WriteReport shows desired and observed counts per tracked kind.
func (f *TableFormatter) WriteReport(w io.Writer, report Report) error {
	if report.Namespace != "" {
		if _, err := fmt.Fprintf(w, "%s %s\n", f.paint(text.FgHiBlue, "Namespace:"), report.Namespace); err != nil {
			return err
		}
	}
	if report.Gated {
		return f.writeEmptyMessage(w, "Namespace is not in scope, no children are generated")
	}
	if _, err := fmt.Fprintf(w, "%s %s (%d manifests)\n", f.paint(text.FgHiBlue, "Folder:"), report.Folder, report.Manifests); err != nil {
		return err
	}

	if len(report.Kinds) == 0 {
		if err := f.writeEmptyMessage(w, "No tracked kinds"); err != nil {
			return err
		}
	} else if report.Namespace == "" {
		t := f.createTable(w)
		t.AppendHeader(f.header("KIND", "DESIRED"))
		for _, kind := range report.Kinds {
			t.AppendRow(table.Row{kind.Kind, kind.Desired})
		}
		t.Render()
	} else {
		t := f.createTable(w)
		t.AppendHeader(f.header("KIND", "DESIRED", "OBSERVED", "STATUS"))
		for _, kind := range report.Kinds {
			t.AppendRow(table.Row{kind.Kind, kind.Desired, kind.Observed, f.readiness(kind.Ready())})
		}
		t.Render()
	}

	if report.Namespace == "" {
		_, err := fmt.Fprintf(w, "%s %s\n", f.paint(text.FgHiBlue, "Manifests valid:"), f.readiness(report.Ready))
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", f.paint(text.FgHiBlue, "Resources ready:"), f.readiness(report.Ready))
	return err
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, 0, len(names))
	for _, name := range names {
		row = append(row, f.paint(text.FgHiCyan, name))
	}
	return row
}

func (f *TableFormatter) readiness(ready bool) string {
	if ready {
		return f.paint(text.FgGreen, "True")
	}
	return f.paint(text.FgRed, "False")
}

func (f *TableFormatter) paint(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}

// writeEmptyMessage formats empty result messages
func (f *TableFormatter) writeEmptyMessage(w io.Writer, message string) error {
	_, err := fmt.Fprintf(w, "%s\n", f.paint(text.FgYellow, message))
	return err
}
