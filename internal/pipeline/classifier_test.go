package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/provider"
)

func ok(name string, r provider.Result) Outcome {
	return Outcome{Provider: name, Result: r}
}

// TestClassify tests bucket assignment rules.
func TestClassify(t *testing.T) {
	t.Parallel()

	github := model.SocialProfile{Platform: "GitHub", URL: model.StringPtr("https://github.com/x"), Status: model.StatusFound}
	reddit := model.SocialProfile{Platform: "Reddit", Status: model.StatusNotFoundOrPrivate}
	vuln := model.VulnerabilityFinding{Source: "NVD", Severity: "HIGH", Description: "d"}
	hit := model.WebHit{Source: "Bing", ResultType: "WebPage", Data: map[string]any{"url": "u"}}

	testCases := []struct {
		name     string
		outcomes []Outcome
		expected Buckets
	}{
		{
			name:     "no outcomes",
			outcomes: nil,
			expected: Buckets{},
		},
		{
			name: "single domain record",
			outcomes: []Outcome{
				ok("domain", provider.Single(model.DomainRecord{IsRegistered: true})),
			},
			expected: Buckets{Domain: &model.DomainRecord{IsRegistered: true}},
		},
		{
			name: "last domain record wins",
			outcomes: []Outcome{
				ok("a", provider.Single(model.DomainRecord{IsRegistered: false})),
				ok("b", provider.Single(model.Payload{"is_registered": true, "owner_simulated": "o"})),
			},
			expected: Buckets{Domain: &model.DomainRecord{IsRegistered: true, Owner: model.StringPtr("o")}},
		},
		{
			name: "batches are routed by first element",
			outcomes: []Outcome{
				ok("social", provider.Batch(github, reddit)),
				ok("nvd", provider.Batch(vuln)),
				ok("web", provider.Batch(hit)),
			},
			expected: Buckets{
				Social:        []model.SocialProfile{github, reddit},
				Vulnerability: []model.VulnerabilityFinding{vuln},
				Web:           []model.WebHit{hit},
			},
		},
		{
			name: "failed providers are discarded",
			outcomes: []Outcome{
				{Provider: "broken", Result: provider.Batch(vuln), Err: errors.New("boom")},
				ok("social", provider.Batch(github)),
			},
			expected: Buckets{Social: []model.SocialProfile{github}},
		},
		{
			name: "foreign elements in a batch are dropped",
			outcomes: []Outcome{
				ok("mixed", provider.Batch(github, hit, model.Payload{"platform": "X", "status": "FOUND"}, model.Payload{"junk": 1})),
			},
			expected: Buckets{Social: []model.SocialProfile{github, {Platform: "X", Status: "FOUND"}}},
		},
		{
			name: "batch led by a domain record is discarded",
			outcomes: []Outcome{
				ok("odd", provider.Batch(model.DomainRecord{IsRegistered: true}, github)),
			},
			expected: Buckets{},
		},
		{
			name: "batch led by an unknown shape is discarded",
			outcomes: []Outcome{
				ok("odd", provider.Batch(model.Payload{"foo": "bar"}, github)),
			},
			expected: Buckets{},
		},
		{
			name: "single non-domain record is discarded",
			outcomes: []Outcome{
				ok("single", provider.Single(github)),
				ok("payload", provider.Single(model.Payload{"source": "S", "result_type": "R"})),
			},
			expected: Buckets{},
		},
		{
			name: "empty results are ignored",
			outcomes: []Outcome{
				ok("empty", provider.Empty()),
				ok("empty-batch", provider.Batch()),
			},
			expected: Buckets{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NewClassifier(WithClassifierLogger(discardLogger())).Classify(tc.outcomes)
			assertBuckets(t, got, tc.expected)
		})
	}
}

// TestClassifyRepresentationAgnostic tests that typed findings and
// equivalent payloads classify identically.
func TestClassifyRepresentationAgnostic(t *testing.T) {
	t.Parallel()

	typed := []Outcome{
		ok("domain", provider.Single(model.DomainRecord{IsRegistered: true, ExpirationDate: model.StringPtr("2030-01-01")})),
		ok("social", provider.Batch(
			model.SocialProfile{Platform: "GitHub", URL: model.StringPtr("https://github.com/x"), Status: model.StatusFound},
			model.SocialProfile{Platform: "Reddit", Status: model.StatusNotFoundOrPrivate},
		)),
		ok("nvd", provider.Batch(model.VulnerabilityFinding{Source: "NVD", CVEID: model.StringPtr("CVE-1"), Severity: "LOW", Description: "d"})),
		ok("web", provider.Batch(model.WebHit{Source: "Bing", ResultType: "WebPage", Data: map[string]any{"url": "u"}})),
	}
	loose := []Outcome{
		ok("domain", provider.Single(model.Payload{"is_registered": true, "owner_simulated": nil, "expiration_date": "2030-01-01"})),
		ok("social", provider.Batch(
			model.Payload{"platform": "GitHub", "url_found": "https://github.com/x", "status": model.StatusFound},
			model.Payload{"platform": "Reddit", "url_found": nil, "status": model.StatusNotFoundOrPrivate},
		)),
		ok("nvd", provider.Batch(model.Payload{"source": "NVD", "cve_id": "CVE-1", "severity": "LOW", "description": "d"})),
		ok("web", provider.Batch(model.Payload{"source": "Bing", "result_type": "WebPage", "data": map[string]any{"url": "u"}})),
	}

	c := NewClassifier(WithClassifierLogger(discardLogger()))
	assertBuckets(t, c.Classify(loose), c.Classify(typed))
}

// TestClassifyCrossProviderDedup tests the opt-in bucket deduplication.
func TestClassifyCrossProviderDedup(t *testing.T) {
	t.Parallel()

	hit := model.WebHit{Source: "Bing", ResultType: "WebPage", Data: map[string]any{"url": "u"}}
	outcomes := []Outcome{
		ok("a", provider.Batch(hit)),
		ok("b", provider.Batch(hit)),
	}

	plain := NewClassifier(WithClassifierLogger(discardLogger())).Classify(outcomes)
	if len(plain.Web) != 2 {
		t.Errorf("expected 2 web hits without dedup, got %d", len(plain.Web))
	}

	deduped := NewClassifier(WithClassifierLogger(discardLogger()), WithCrossProviderDedup(true)).Classify(outcomes)
	if len(deduped.Web) != 1 {
		t.Errorf("expected 1 web hit with dedup, got %d", len(deduped.Web))
	}
}

// assertBuckets compares buckets treating nil and empty slices as equal.
func assertBuckets(t *testing.T, got, expected Buckets) {
	t.Helper()

	if !reflect.DeepEqual(got.Domain, expected.Domain) {
		t.Errorf("domain: got %#v, expected %#v", got.Domain, expected.Domain)
	}
	if len(got.Social) != len(expected.Social) || (len(got.Social) > 0 && !reflect.DeepEqual(got.Social, expected.Social)) {
		t.Errorf("social: got %#v, expected %#v", got.Social, expected.Social)
	}
	if len(got.Vulnerability) != len(expected.Vulnerability) ||
		(len(got.Vulnerability) > 0 && !reflect.DeepEqual(got.Vulnerability, expected.Vulnerability)) {
		t.Errorf("vulnerability: got %#v, expected %#v", got.Vulnerability, expected.Vulnerability)
	}
	if len(got.Web) != len(expected.Web) || (len(got.Web) > 0 && !reflect.DeepEqual(got.Web, expected.Web)) {
		t.Errorf("web: got %#v, expected %#v", got.Web, expected.Web)
	}
}
