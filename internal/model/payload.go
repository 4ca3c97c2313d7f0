package model

import (
	"errors"
	"fmt"
)

// Payload is a loosely typed provider record, typically the result of
// decoding an upstream JSON document into a map. It stays opaque until
// Decode turns it into one of the Finding variants.
type Payload map[string]any

func (Payload) isRecord() {}

// Has reports whether every key is present in the payload.
func (p Payload) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := p[k]; !ok {
			return false
		}
	}
	return true
}

// Decode errors.
var (
	// ErrUndecodable is returned when a record matches none of the variants.
	ErrUndecodable = errors.New("record does not match any finding variant")

	// ErrKindMismatch is returned by DecodeAs when the record decodes to a
	// different variant than the requested one.
	ErrKindMismatch = errors.New("record decodes to a different finding variant")
)

// decodeOrder is the fixed priority in which payloads are tried.
var decodeOrder = []Kind{KindDomain, KindSocial, KindVulnerability, KindWeb}

// Sniff returns the variant a record most likely belongs to, judging only by
// its shape. Typed findings report their own kind. Payloads are matched on
// the presence of their discriminating keys, in decodeOrder.
func Sniff(r Record) Kind {
	switch v := r.(type) {
	case Finding:
		return v.Kind()
	case Payload:
		switch {
		case v.Has("is_registered"):
			return KindDomain
		case v.Has("platform", "status"):
			return KindSocial
		case v.Has("source", "severity"):
			return KindVulnerability
		case v.Has("source", "result_type"):
			return KindWeb
		}
	}
	return KindUnknown
}

// Decode turns a record into a Finding. Typed findings are returned as is.
// Payloads are tried against each variant in a fixed priority order
// (domain, social, vulnerability, web) and the first one that validates wins.
func Decode(r Record) (Finding, error) {
	switch v := r.(type) {
	case nil:
		return nil, ErrUndecodable
	case Finding:
		return v, nil
	case Payload:
		var lastErr error
		for _, kind := range decodeOrder {
			f, err := decodePayload(v, kind)
			if err == nil {
				return f, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, lastErr)
	default:
		return nil, ErrUndecodable
	}
}

// DecodeAs decodes r and checks that it belongs to the given variant.
func DecodeAs(r Record, kind Kind) (Finding, error) {
	if p, ok := r.(Payload); ok {
		return decodePayload(p, kind)
	}
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if f.Kind() != kind {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, kind, f.Kind())
	}
	return f, nil
}

// decodePayload validates and coerces p into the requested variant.
func decodePayload(p Payload, kind Kind) (Finding, error) {
	switch kind {
	case KindDomain:
		return decodeDomain(p)
	case KindSocial:
		return decodeSocial(p)
	case KindVulnerability:
		return decodeVulnerability(p)
	case KindWeb:
		return decodeWeb(p)
	default:
		return nil, ErrUndecodable
	}
}

func decodeDomain(p Payload) (Finding, error) {
	registered, ok := p["is_registered"].(bool)
	if !ok {
		return nil, fieldError("is_registered", "bool")
	}
	owner, err := optionalString(p, "owner_simulated")
	if err != nil {
		return nil, err
	}
	expiration, err := optionalString(p, "expiration_date")
	if err != nil {
		return nil, err
	}
	return DomainRecord{IsRegistered: registered, Owner: owner, ExpirationDate: expiration}, nil
}

func decodeSocial(p Payload) (Finding, error) {
	platform, err := requiredString(p, "platform")
	if err != nil {
		return nil, err
	}
	status, err := requiredString(p, "status")
	if err != nil {
		return nil, err
	}
	url, err := optionalString(p, "url_found")
	if err != nil {
		return nil, err
	}
	return SocialProfile{Platform: platform, URL: url, Status: status}, nil
}

func decodeVulnerability(p Payload) (Finding, error) {
	source, err := requiredString(p, "source")
	if err != nil {
		return nil, err
	}
	severity, err := requiredString(p, "severity")
	if err != nil {
		return nil, err
	}
	description, err := requiredString(p, "description")
	if err != nil {
		return nil, err
	}
	cveID, err := optionalString(p, "cve_id")
	if err != nil {
		return nil, err
	}
	return VulnerabilityFinding{
		Source:      source,
		CVEID:       cveID,
		Severity:    severity,
		Description: description,
	}, nil
}

func decodeWeb(p Payload) (Finding, error) {
	source, err := requiredString(p, "source")
	if err != nil {
		return nil, err
	}
	resultType, err := requiredString(p, "result_type")
	if err != nil {
		return nil, err
	}
	return WebHit{Source: source, ResultType: resultType, Data: coerceData(p["data"])}, nil
}

// coerceData normalizes the opaque web hit payload into a map.
// Non-map values are kept under the "value" key.
func coerceData(v any) map[string]any {
	switch d := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return d
	case Payload:
		return map[string]any(d)
	default:
		return map[string]any{"value": d}
	}
}

func requiredString(p Payload, key string) (string, error) {
	s, ok := p[key].(string)
	if !ok {
		return "", fieldError(key, "string")
	}
	return s, nil
}

func optionalString(p Payload, key string) (*string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fieldError(key, "string or null")
	}
	return &s, nil
}

func fieldError(key, want string) error {
	return fmt.Errorf("field %q: expected %s", key, want)
}
