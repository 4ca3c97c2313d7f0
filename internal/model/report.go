package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Timestamp suffixes that record where a report came from.
const (
	// ProvenanceLive marks a freshly assembled report.
	ProvenanceLive = "Live"
	// ProvenanceCached marks a report served from the cache.
	ProvenanceCached = "Cached"
)

// ErrInvalidReport is returned when a serialized report is missing
// required fields.
var ErrInvalidReport = errors.New("invalid report")

// Report is the aggregation root returned for one analyzed target.
//
// The JSON form is both the public response body and the cached
// representation, so field names are part of the wire contract.
type Report struct {
	// Target is the analyzed domain or username.
	Target string `json:"target"`

	// Timestamp is the assembly (or serving) time with a provenance suffix,
	// e.g. "2026-01-02T15:04:05.000000Z (Live)".
	Timestamp string `json:"timestamp"`

	// Summary is a one-sentence human-readable summary.
	Summary string `json:"summary"`

	// IsCached is true when the report was served from the cache.
	IsCached bool `json:"is_cached"`

	// DomainResults is the registration record, if any provider produced one.
	DomainResults *DomainRecord `json:"domain_results"`

	// SocialMediaHits lists social profiles in provider order.
	SocialMediaHits []SocialProfile `json:"social_media_hits"`

	// VulnerabilityHits lists vulnerability findings in provider order.
	VulnerabilityHits []VulnerabilityFinding `json:"vulnerability_hits"`

	// WebSearchData lists web hits in provider order.
	WebSearchData []WebHit `json:"web_search_data"`
}

// NewReport creates an empty report for target with non-nil sequences.
func NewReport(target string) *Report {
	return &Report{
		Target:            target,
		SocialMediaHits:   make([]SocialProfile, 0),
		VulnerabilityHits: make([]VulnerabilityFinding, 0),
		WebSearchData:     make([]WebHit, 0),
	}
}

// FoundProfiles counts social profiles whose status is exactly StatusFound.
func (r *Report) FoundProfiles() int {
	n := 0
	for _, hit := range r.SocialMediaHits {
		if hit.IsFound() {
			n++
		}
	}
	return n
}

// Normalize replaces nil sequences with empty ones so the report always
// serializes sequences as [] rather than null.
func (r *Report) Normalize() {
	if r.SocialMediaHits == nil {
		r.SocialMediaHits = make([]SocialProfile, 0)
	}
	if r.VulnerabilityHits == nil {
		r.VulnerabilityHits = make([]VulnerabilityFinding, 0)
	}
	if r.WebSearchData == nil {
		r.WebSearchData = make([]WebHit, 0)
	}
}

// Findings returns every finding in the report as a flat list,
// domain first, then social, vulnerability and web hits.
func (r *Report) Findings() []Finding {
	out := make([]Finding, 0, 1+len(r.SocialMediaHits)+len(r.VulnerabilityHits)+len(r.WebSearchData))
	if r.DomainResults != nil {
		out = append(out, *r.DomainResults)
	}
	for _, f := range r.SocialMediaHits {
		out = append(out, f)
	}
	for _, f := range r.VulnerabilityHits {
		out = append(out, f)
	}
	for _, f := range r.WebSearchData {
		out = append(out, f)
	}
	return out
}

// Encode serializes the report into its cached form.
func (r *Report) Encode() ([]byte, error) {
	r.Normalize()
	return json.Marshal(r)
}

// DecodeReport parses a serialized report. It fails on malformed JSON and
// on documents missing target, timestamp or summary. Numbers inside web hit
// data decode as json.Number so integers keep their exact value.
func DecodeReport(data []byte) (*Report, error) {
	var raw struct {
		Report
		Target    *string `json:"target"`
		Timestamp *string `json:"timestamp"`
		Summary   *string `json:"summary"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidReport)
	}
	switch {
	case raw.Target == nil || *raw.Target == "":
		return nil, fmt.Errorf("%w: missing target", ErrInvalidReport)
	case raw.Timestamp == nil:
		return nil, fmt.Errorf("%w: missing timestamp", ErrInvalidReport)
	case raw.Summary == nil:
		return nil, fmt.Errorf("%w: missing summary", ErrInvalidReport)
	}

	report := raw.Report
	report.Target = *raw.Target
	report.Timestamp = *raw.Timestamp
	report.Summary = *raw.Summary
	report.Normalize()
	return &report, nil
}
