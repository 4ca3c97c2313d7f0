package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/footprint/internal/model"
)

const ruleWidth = 70

// SimpleWriter renders reports as plain text for terminals.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have nothing in them.
	showEmpty bool

	// verbose adds web hit data and not-found profiles.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders report.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDomain(&sb, report)
	w.writeSocial(&sb, report)
	w.writeVulnerabilities(&sb, report)
	w.writeWeb(&sb, report)

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                       DIGITAL FOOTPRINT REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target:    %s\n", report.Target)
	fmt.Fprintf(sb, "Timestamp: %s\n", report.Timestamp)
	if report.IsCached {
		sb.WriteString("Source:    cache\n")
	} else {
		sb.WriteString("Source:    live analysis\n")
	}
	fmt.Fprintf(sb, "Summary:   %s\n\n", report.Summary)
}

func (w *SimpleWriter) writeDomain(sb *strings.Builder, report *model.Report) {
	d := report.DomainResults
	if d == nil && !w.showEmpty {
		return
	}
	section(sb, "DOMAIN")

	switch {
	case d == nil:
		sb.WriteString("  No domain information\n")
	case !d.IsRegistered:
		sb.WriteString("  Registered: no\n")
	default:
		sb.WriteString("  Registered: yes\n")
		fmt.Fprintf(sb, "  Owner:      %s\n", orDash(model.Deref(d.Owner)))
		fmt.Fprintf(sb, "  Expires:    %s\n", orDash(model.Deref(d.ExpirationDate)))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSocial(sb *strings.Builder, report *model.Report) {
	if len(report.SocialMediaHits) == 0 && !w.showEmpty {
		return
	}
	section(sb, "SOCIAL MEDIA")

	if len(report.SocialMediaHits) == 0 {
		sb.WriteString("  No social profiles\n\n")
		return
	}
	for _, p := range report.SocialMediaHits {
		if p.URL == nil && !w.verbose {
			continue
		}
		marker := "[-]"
		if p.IsFound() {
			marker = "[+]"
		}
		fmt.Fprintf(sb, "  %s %-10s %-22s %s\n", marker, p.Platform, statusLabel(p.Status), model.Deref(p.URL))
	}
	fmt.Fprintf(sb, "\n  %d of %d profiles found\n\n", report.FoundProfiles(), len(report.SocialMediaHits))
}

func (w *SimpleWriter) writeVulnerabilities(sb *strings.Builder, report *model.Report) {
	if len(report.VulnerabilityHits) == 0 && !w.showEmpty {
		return
	}
	section(sb, "VULNERABILITIES")

	if len(report.VulnerabilityHits) == 0 {
		sb.WriteString("  No potential vulnerabilities\n\n")
		return
	}
	groups := vulnerabilitiesBySeverity(report)
	for _, level := range severityOrder {
		for _, v := range groups[level] {
			fmt.Fprintf(sb, "  [%s] %s %s\n", severityIndicator(level), level, orDash(model.Deref(v.CVEID)))
			fmt.Fprintf(sb, "      %s (%s)\n", truncateString(v.Description, 100), v.Source)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeWeb(sb *strings.Builder, report *model.Report) {
	if len(report.WebSearchData) == 0 && !w.showEmpty {
		return
	}
	section(sb, "WEB INTELLIGENCE")

	if len(report.WebSearchData) == 0 {
		sb.WriteString("  No web results\n\n")
		return
	}
	for _, hit := range report.WebSearchData {
		fmt.Fprintf(sb, "  * %s [%s / %s]\n", truncateString(hitTitle(hit), 60), hit.Source, hit.ResultType)
		if w.verbose {
			for _, field := range dataFields(hit.Data) {
				fmt.Fprintf(sb, "      %s\n", field)
			}
		}
	}
	sb.WriteString("\n")
}

func severityIndicator(level model.Severity) string {
	switch level {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}
