package pipeline

import (
	"fmt"
	"time"

	"github.com/nao1215/footprint/internal/model"
)

// TimestampLayout is the UTC layout of report timestamps, before the
// provenance suffix.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// summaryFormat is the one-sentence report summary.
const summaryFormat = "Analysis complete. Found %d social profiles and %d potential vulnerabilities."

// Timestamp formats now in UTC followed by the provenance suffix,
// e.g. "2026-01-02T15:04:05.000000Z (Live)".
func Timestamp(now time.Time, provenance string) string {
	return now.UTC().Format(TimestampLayout) + " (" + provenance + ")"
}

// Summary returns the summary sentence for the given counts.
func Summary(profiles, vulnerabilities int) string {
	return fmt.Sprintf(summaryFormat, profiles, vulnerabilities)
}

// Assemble builds a live report for target from classified buckets.
// Only profiles with status exactly FOUND are counted in the summary.
func Assemble(target string, b Buckets, now time.Time) *model.Report {
	report := model.NewReport(target)
	report.Timestamp = Timestamp(now, model.ProvenanceLive)
	report.DomainResults = b.Domain
	if b.Social != nil {
		report.SocialMediaHits = b.Social
	}
	if b.Vulnerability != nil {
		report.VulnerabilityHits = b.Vulnerability
	}
	if b.Web != nil {
		report.WebSearchData = b.Web
	}
	report.Summary = Summary(report.FoundProfiles(), len(report.VulnerabilityHits))
	return report
}
