package model

import "strings"

// Severity is a normalized severity level for vulnerability findings.
// Providers report free-form labels; ParseSeverity maps the common ones
// onto this scale so reports can be grouped and sorted.
type Severity int

const (
	// SeverityUnknown is used for labels that do not map to a known level.
	SeverityUnknown Severity = iota

	// SeverityInfo indicates informational findings.
	SeverityInfo

	// SeverityLow indicates minor issues with limited impact.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	SeverityMedium

	// SeverityHigh indicates serious issues.
	SeverityHigh

	// SeverityCritical indicates severe issues that need immediate attention.
	SeverityCritical
)

// String returns the canonical upper-case label of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a provider severity label onto the Severity scale.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseSeverity(label string) Severity {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "INFO", "INFORMATIONAL", "NONE":
		return SeverityInfo
	case "LOW":
		return SeverityLow
	case "MEDIUM", "MODERATE":
		return SeverityMedium
	case "HIGH", "IMPORTANT":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// SeverityLevel returns the normalized severity of the finding.
func (v VulnerabilityFinding) SeverityLevel() Severity {
	return ParseSeverity(v.Severity)
}

// SeverityCounts tallies vulnerability findings per normalized severity.
func (r *Report) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int)
	for _, v := range r.VulnerabilityHits {
		counts[v.SeverityLevel()]++
	}
	return counts
}
