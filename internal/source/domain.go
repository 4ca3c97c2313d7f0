package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/provider"
)

// DefaultRDAPEndpoint is the RDAP bootstrap service.
const DefaultRDAPEndpoint = "https://rdap.org"

// PrivateRegistration is the owner label for registrations whose registrant
// is withheld or redacted.
const PrivateRegistration = "Private Registration"

// DomainConfig configures the domain provider.
type DomainConfig struct {
	Client   *http.Client
	Endpoint string
	Logger   *slog.Logger
}

// Domain looks up registration data over RDAP.
type Domain struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewDomain creates the domain provider.
func NewDomain(cfg DomainConfig) *Domain {
	d := &Domain{client: cfg.Client, endpoint: strings.TrimRight(cfg.Endpoint, "/"), logger: cfg.Logger}
	if d.client == nil {
		d.client = http.DefaultClient
	}
	if d.endpoint == "" {
		d.endpoint = DefaultRDAPEndpoint
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Name implements provider.Provider.
func (d *Domain) Name() string { return "domain" }

// Collect implements provider.Provider. Targets without a dot are reported
// as unregistered without a lookup.
func (d *Domain) Collect(ctx context.Context, target string) (provider.Result, error) {
	name, ok := RegistrableDomain(target)
	if !ok {
		return provider.Single(model.DomainRecord{IsRegistered: false}), nil
	}

	var doc rdapDomain
	err := getJSON(ctx, d.client, d.endpoint+"/domain/"+url.PathEscape(name),
		http.Header{"Accept": {"application/rdap+json"}}, &doc)
	if errors.Is(err, ErrNotFound) {
		d.logger.Debug("domain not registered", "domain", name)
		return provider.Single(model.DomainRecord{IsRegistered: false}), nil
	}
	if err != nil {
		return provider.Result{}, fmt.Errorf("rdap lookup %s: %w", name, err)
	}

	record := model.DomainRecord{
		IsRegistered: true,
		Owner:        model.StringPtr(doc.registrant()),
	}
	if exp, ok := doc.expiration(); ok {
		record.ExpirationDate = model.StringPtr(exp)
	}
	return provider.Single(record), nil
}

// RegistrableDomain normalizes target to its ASCII registrable domain
// ("www.Example.co.uk." becomes "example.co.uk"). It reports false when
// target cannot name a domain.
func RegistrableDomain(target string) (string, bool) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(target)), ".")
	if !strings.Contains(name, ".") {
		return "", false
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", false
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(ascii); err == nil {
		return etld1, true
	}
	return ascii, true
}

type rdapDomain struct {
	Events   []rdapEvent  `json:"events"`
	Entities []rdapEntity `json:"entities"`
}

type rdapEvent struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

type rdapEntity struct {
	Roles      []string `json:"roles"`
	VCardArray []any    `json:"vcardArray"`
}

func (d rdapDomain) expiration() (string, bool) {
	for _, ev := range d.Events {
		if ev.Action != "expiration" || ev.Date == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, ev.Date); err == nil {
			return t.UTC().Format(time.DateOnly), true
		}
		return ev.Date, true
	}
	return "", false
}

func (d rdapDomain) registrant() string {
	for _, e := range d.Entities {
		for _, role := range e.Roles {
			if role != "registrant" {
				continue
			}
			fn := e.formattedName()
			if fn == "" || strings.Contains(strings.ToUpper(fn), "REDACTED") ||
				strings.Contains(strings.ToLower(fn), "privacy") {
				return PrivateRegistration
			}
			return fn
		}
	}
	return PrivateRegistration
}

// formattedName extracts the "fn" property of a jCard:
// ["vcard", [["fn", {}, "text", "Acme Inc"], ...]].
func (e rdapEntity) formattedName() string {
	if len(e.VCardArray) < 2 {
		return ""
	}
	props, ok := e.VCardArray[1].([]any)
	if !ok {
		return ""
	}
	for _, p := range props {
		prop, ok := p.([]any)
		if !ok || len(prop) < 4 {
			continue
		}
		if name, _ := prop[0].(string); name == "fn" {
			value, _ := prop[3].(string)
			return strings.TrimSpace(value)
		}
	}
	return ""
}
