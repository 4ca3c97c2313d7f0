package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{SeverityUnknown, "UNKNOWN"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests label normalization.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		label    string
		expected Severity
	}{
		{"CRITICAL", SeverityCritical},
		{"critical", SeverityCritical},
		{" High ", SeverityHigh},
		{"IMPORTANT", SeverityHigh},
		{"moderate", SeverityMedium},
		{"MEDIUM", SeverityMedium},
		{"low", SeverityLow},
		{"NONE", SeverityInfo},
		{"", SeverityUnknown},
		{"SEVERE-ish", SeverityUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			t.Parallel()
			if got := ParseSeverity(tc.label); got != tc.expected {
				t.Errorf("ParseSeverity(%q) = %v, expected %v", tc.label, got, tc.expected)
			}
		})
	}
}

// TestReportSeverityCounts tests grouping vulnerability findings by level.
func TestReportSeverityCounts(t *testing.T) {
	t.Parallel()

	report := NewReport("example.com")
	report.VulnerabilityHits = []VulnerabilityFinding{
		{Source: "NVD", Severity: "HIGH", Description: "a"},
		{Source: "NVD", Severity: "high", Description: "b"},
		{Source: "NVD", Severity: "CRITICAL", Description: "c"},
		{Source: "NVD", Severity: "whatever", Description: "d"},
	}

	counts := report.SeverityCounts()
	if counts[SeverityHigh] != 2 {
		t.Errorf("expected 2 high findings, got %d", counts[SeverityHigh])
	}
	if counts[SeverityCritical] != 1 {
		t.Errorf("expected 1 critical finding, got %d", counts[SeverityCritical])
	}
	if counts[SeverityUnknown] != 1 {
		t.Errorf("expected 1 unknown finding, got %d", counts[SeverityUnknown])
	}
}
