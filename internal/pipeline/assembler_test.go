package pipeline

import (
	"testing"
	"time"

	"github.com/nao1215/footprint/internal/model"
)

// TestAssemble tests report assembly from buckets.
func TestAssemble(t *testing.T) {
	t.Parallel()

	t.Run("counts only exact FOUND profiles", func(t *testing.T) {
		t.Parallel()

		b := Buckets{
			Social: []model.SocialProfile{
				{Platform: "GitHub", Status: model.StatusFound},
				{Platform: "GitHub", Status: model.StatusFoundSimulated},
				{Platform: "Reddit", Status: model.StatusNotFoundOrPrivate},
			},
			Vulnerability: []model.VulnerabilityFinding{
				{Source: "a", Severity: "LOW", Description: "x"},
				{Source: "b", Severity: "LOW", Description: "y"},
			},
		}

		report := Assemble("target", b, fixedNow)
		expected := "Analysis complete. Found 1 social profiles and 2 potential vulnerabilities."
		if report.Summary != expected {
			t.Errorf("got %q, expected %q", report.Summary, expected)
		}
		if report.IsCached {
			t.Error("expected is_cached=false")
		}
	})

	t.Run("empty buckets produce empty sequences", func(t *testing.T) {
		t.Parallel()

		report := Assemble("target", Buckets{}, fixedNow)
		if report.SocialMediaHits == nil || report.VulnerabilityHits == nil || report.WebSearchData == nil {
			t.Error("expected non-nil sequences")
		}
		if report.Summary != "Analysis complete. Found 0 social profiles and 0 potential vulnerabilities." {
			t.Errorf("unexpected summary %q", report.Summary)
		}
	})
}

// TestTimestamp tests the provenance suffix and UTC conversion.
func TestTimestamp(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, 1, 2, 9, 4, 5, 0, tokyo)

	testCases := []struct {
		provenance string
		expected   string
	}{
		{model.ProvenanceLive, "2026-01-02T00:04:05.000000Z (Live)"},
		{model.ProvenanceCached, "2026-01-02T00:04:05.000000Z (Cached)"},
	}

	for _, tc := range testCases {
		t.Run(tc.provenance, func(t *testing.T) {
			t.Parallel()
			if got := Timestamp(now, tc.provenance); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}
