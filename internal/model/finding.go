package model

// Kind identifies which of the four finding variants a record belongs to.
type Kind int

const (
	// KindUnknown is returned for records that match no variant.
	KindUnknown Kind = iota
	// KindDomain marks a DomainRecord.
	KindDomain
	// KindSocial marks a SocialProfile.
	KindSocial
	// KindVulnerability marks a VulnerabilityFinding.
	KindVulnerability
	// KindWeb marks a WebHit.
	KindWeb
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindSocial:
		return "social"
	case KindVulnerability:
		return "vulnerability"
	case KindWeb:
		return "web"
	default:
		return "unknown"
	}
}

// Social profile status values used by the built-in sources.
// The vocabulary is open: providers may report any other status string.
const (
	// StatusFound means the profile exists and is publicly reachable.
	StatusFound = "FOUND"
	// StatusNotFoundOrPrivate means the profile could not be confirmed.
	StatusNotFoundOrPrivate = "NOT_FOUND_OR_PRIVATE"
	// StatusFoundSimulated marks profiles produced by a simulated source.
	StatusFoundSimulated = "FOUND (SIMULATED)"
)

// Record is anything a provider may emit: either a typed Finding or a
// loosely typed Payload that still has to be decoded.
//
// The interface is sealed; only types in this package implement it.
type Record interface {
	isRecord()
}

// Finding is a normalized unit of evidence. Every finding carries the
// platform or source that produced it so it can be attributed after merging.
type Finding interface {
	Record

	// Kind reports the finding variant.
	Kind() Kind

	// Provenance returns the platform or source label of the finding.
	Provenance() string
}

// DomainRecord holds registration information about a domain.
type DomainRecord struct {
	// IsRegistered reports whether the domain is registered.
	IsRegistered bool `json:"is_registered"`

	// Owner is the registrant label, if the registry exposes one.
	Owner *string `json:"owner_simulated"`

	// ExpirationDate is the expiration date in a provider-defined format.
	ExpirationDate *string `json:"expiration_date"`
}

func (DomainRecord) isRecord() {}

// Kind implements Finding.
func (DomainRecord) Kind() Kind { return KindDomain }

// Provenance implements Finding. Domain records are attributed to the
// registration lookup itself.
func (DomainRecord) Provenance() string { return "domain" }

// SocialProfile describes the presence of the target on a social platform.
type SocialProfile struct {
	// Platform is the platform display name (e.g., "GitHub").
	Platform string `json:"platform"`

	// URL is the resolved profile URL, if one was found.
	URL *string `json:"url_found"`

	// Status is the lookup status, see StatusFound and friends.
	Status string `json:"status"`
}

func (SocialProfile) isRecord() {}

// Kind implements Finding.
func (SocialProfile) Kind() Kind { return KindSocial }

// Provenance implements Finding.
func (p SocialProfile) Provenance() string { return p.Platform }

// IsFound reports whether the status is exactly StatusFound.
// Simulated hits do not count.
func (p SocialProfile) IsFound() bool { return p.Status == StatusFound }

// VulnerabilityFinding is a potential vulnerability associated with the target.
type VulnerabilityFinding struct {
	// Source is the database or scanner that reported the issue.
	Source string `json:"source"`

	// CVEID is an optional identifier such as "CVE-2024-0001".
	CVEID *string `json:"cve_id"`

	// Severity is a free-form severity label (e.g., "HIGH").
	Severity string `json:"severity"`

	// Description is a human-readable description.
	Description string `json:"description"`
}

func (VulnerabilityFinding) isRecord() {}

// Kind implements Finding.
func (VulnerabilityFinding) Kind() Kind { return KindVulnerability }

// Provenance implements Finding.
func (v VulnerabilityFinding) Provenance() string { return v.Source }

// WebHit is a web, code or paste search result. Data is provider-defined.
type WebHit struct {
	// Source is the search backend label.
	Source string `json:"source"`

	// ResultType is a free label such as "WebPage", "CodeMatch" or "Paste Mention".
	ResultType string `json:"result_type"`

	// Data is the opaque structured payload of the hit.
	Data map[string]any `json:"data"`
}

func (WebHit) isRecord() {}

// Kind implements Finding.
func (WebHit) Kind() Kind { return KindWeb }

// Provenance implements Finding.
func (w WebHit) Provenance() string { return w.Source }

// StringField returns Data[key] when it is a non-empty string.
func (w WebHit) StringField(key string) (string, bool) {
	if w.Data == nil {
		return "", false
	}
	s, ok := w.Data[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// StringPtr returns a pointer to s. It is a convenience for the optional
// string fields of the finding types.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
