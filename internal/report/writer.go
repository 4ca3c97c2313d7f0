package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/footprint/internal/model"
)

// Writer renders reports to a destination.
type Writer interface {
	// Write renders one report and returns the number of bytes written.
	Write(report *model.Report) (int, error)
}

// Format names a report format.
type Format string

// Report formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned by NewWriter for an unknown format.
var ErrUnknownFormat = errors.New("unknown report format")

// NewWriter returns the writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes each report to several Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes report to every writer and stops at the first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// statusLabel turns a status such as "NOT_FOUND_OR_PRIVATE" into
// "Not Found Or Private".
func statusLabel(status string) string {
	if status == "" {
		return "-"
	}
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(status, "_", " ")))
}

// severityOrder lists severities from most to least severe.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
	model.SeverityUnknown,
}

// vulnerabilitiesBySeverity groups findings by normalized severity,
// keeping report order within each group.
func vulnerabilitiesBySeverity(report *model.Report) map[model.Severity][]model.VulnerabilityFinding {
	groups := make(map[model.Severity][]model.VulnerabilityFinding)
	for _, v := range report.VulnerabilityHits {
		groups[v.SeverityLevel()] = append(groups[v.SeverityLevel()], v)
	}
	return groups
}

// dataFields renders web hit data as sorted "key: value" pairs.
func dataFields(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s: %v", k, data[k]))
	}
	return out
}

// hitTitle picks the most descriptive field of a web hit.
func hitTitle(hit model.WebHit) string {
	for _, key := range []string{"name", "url", "html_url", "permutation", "dork", "path"} {
		if s, ok := hit.StringField(key); ok {
			return s
		}
	}
	return hit.ResultType
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString shortens s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
