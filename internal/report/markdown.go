package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/footprint/internal/model"
)

// MarkdownWriter renders reports as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders report.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeDomain(md, report)
	w.writeSocial(md, report)
	w.writeVulnerabilities(md, report)
	w.writeWeb(md, report)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [footprint](https://github.com/nao1215/footprint)*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1f("Digital Footprint: %s", report.Target)
	md.PlainText("")

	source := "Live analysis"
	if report.IsCached {
		source = "Cache"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Timestamp", report.Timestamp},
			{"Source", source},
			{"Profiles found", strconv.Itoa(report.FoundProfiles())},
			{"Potential vulnerabilities", strconv.Itoa(len(report.VulnerabilityHits))},
			{"Web results", strconv.Itoa(len(report.WebSearchData))},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	counts := report.SeverityCounts()
	switch {
	case counts[model.SeverityCritical] > 0:
		md.Cautionf("%s %d critical vulnerability finding(s).", report.Summary, counts[model.SeverityCritical])
	case counts[model.SeverityHigh] > 0:
		md.Warningf("%s %d high severity finding(s).", report.Summary, counts[model.SeverityHigh])
	case report.FoundProfiles() > 0 || len(report.VulnerabilityHits) > 0:
		md.Important(report.Summary)
	default:
		md.Note(report.Summary)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeDomain(md *markdown.Markdown, report *model.Report) {
	md.H2("Domain")
	md.PlainText("")

	d := report.DomainResults
	if d == nil {
		md.PlainText("No domain information.")
		md.PlainText("")
		return
	}
	registered := "No"
	if d.IsRegistered {
		registered = "Yes"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Registered", "Owner", "Expires"},
		Rows: [][]string{{
			registered,
			orDash(model.Deref(d.Owner)),
			orDash(model.Deref(d.ExpirationDate)),
		}},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSocial(md *markdown.Markdown, report *model.Report) {
	md.H2("Social Media")
	md.PlainText("")

	if len(report.SocialMediaHits) == 0 {
		md.PlainText("No social profiles.")
		md.PlainText("")
		return
	}
	rows := make([][]string, len(report.SocialMediaHits))
	for i, p := range report.SocialMediaHits {
		url := "-"
		if p.URL != nil {
			url = "<" + *p.URL + ">"
		}
		rows[i] = []string{p.Platform, statusLabel(p.Status), url}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Status", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeVulnerabilities(md *markdown.Markdown, report *model.Report) {
	md.H2("Potential Vulnerabilities")
	md.PlainText("")

	if len(report.VulnerabilityHits) == 0 {
		md.PlainText("No potential vulnerabilities.")
		md.PlainText("")
		return
	}

	groups := vulnerabilitiesBySeverity(report)
	w.writePieChart(md, groups)

	for _, level := range severityOrder {
		findings := groups[level]
		if len(findings) == 0 {
			continue
		}
		md.H3(severityHeading(level))
		md.PlainText("")

		rows := make([][]string, len(findings))
		for i, v := range findings {
			rows[i] = []string{orDash(model.Deref(v.CVEID)), v.Source, truncateString(v.Description, 80)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"CVE", "Source", "Description"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, v := range findings {
			if len([]rune(v.Description)) > 80 {
				md.Details(orDash(model.Deref(v.CVEID)), v.Description)
			}
		}
	}
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, groups map[model.Severity][]model.VulnerabilityFinding) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Vulnerability Severity Distribution"),
		piechart.WithShowData(true),
	)
	for _, level := range severityOrder {
		if n := len(groups[level]); n > 0 {
			chart.LabelAndIntValue(level.String(), uint64(n))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func severityHeading(level model.Severity) string {
	switch level {
	case model.SeverityCritical:
		return "🔴 Critical"
	case model.SeverityHigh:
		return "🟠 High"
	case model.SeverityMedium:
		return "🟡 Medium"
	case model.SeverityLow:
		return "🔵 Low"
	case model.SeverityInfo:
		return "⚪ Info"
	default:
		return "❔ Unknown"
	}
}

func (w *MarkdownWriter) writeWeb(md *markdown.Markdown, report *model.Report) {
	md.H2("Web Intelligence")
	md.PlainText("")

	if len(report.WebSearchData) == 0 {
		md.PlainText("No web results.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.WebSearchData))
	for i, hit := range report.WebSearchData {
		rows[i] = []string{
			hit.Source,
			hit.ResultType,
			strings.ReplaceAll(truncateString(hitTitle(hit), 60), "|", "\\|"),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Type", "Result"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, hit := range report.WebSearchData {
		if fields := dataFields(hit.Data); len(fields) > 0 {
			md.Details(hitTitle(hit), strings.Join(fields, "\n"))
		}
	}
	md.PlainText("")
}
