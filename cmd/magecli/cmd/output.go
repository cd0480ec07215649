package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/magento-go/pkg/magento"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// printModelsTable renders one row per model with the given record fields as
// columns. Missing fields render as "-".
func printModelsTable(models []*magento.Model, columns ...string) error {
	tw := newTabWriter(os.Stdout)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = strings.ToUpper(strings.ReplaceAll(col, "_", " "))
	}
	tw.writef("%s\n", strings.Join(headers, "\t"))

	for _, m := range models {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = fieldText(m, col)
		}
		tw.writef("%s\n", strings.Join(cells, "\t"))
	}
	return tw.finish()
}

// printModelDetail renders a model's scalar fields as key/value lines in
// sorted order. Nested objects and lists are summarized, not expanded.
func printModelDetail(m *magento.Model) error {
	data := m.Data()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tw := newTabWriter(os.Stdout)
	for _, k := range keys {
		switch v := data[k].(type) {
		case map[string]any:
			tw.writef("%s:\t<%d fields>\n", k, len(v))
		case []any:
			tw.writef("%s:\t<%d entries>\n", k, len(v))
		default:
			tw.writef("%s:\t%s\n", k, truncate(fmt.Sprintf("%v", v), 80))
		}
	}
	return tw.finish()
}

func fieldText(m *magento.Model, field string) string {
	v, ok := m.Get(field)
	if !ok || v == nil {
		return "-"
	}
	return truncate(fmt.Sprintf("%v", v), 40)
}

func modelData(models []*magento.Model) []map[string]any {
	out := make([]map[string]any, len(models))
	for i, m := range models {
		out[i] = m.Data()
	}
	return out
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
