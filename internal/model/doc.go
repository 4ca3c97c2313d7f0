// Package model defines the data structures shared across footprint.
//
// This package contains the following main types:
//   - Finding: a sealed interface over the four finding variants
//     (DomainRecord, SocialProfile, VulnerabilityFinding, WebHit)
//   - Payload: a loosely typed provider record awaiting decoding
//   - Report: the aggregation root returned for one analyzed target
//
// Providers may emit typed findings or payloads. Decode converts both into
// typed findings using a fixed priority order, so the rest of the engine
// never has to inspect raw maps.
//
// The models are designed to be serializable to JSON; the Report JSON form is
// used both as the HTTP response body and as the cached representation.
package model
