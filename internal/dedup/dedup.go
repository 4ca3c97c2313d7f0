// Package dedup collapses duplicate findings reported by different providers.
//
// Web hits are identified by the URL they point at (falling back to html_url
// and then name); social profiles by their resolved profile URL. Domain
// records and vulnerability findings have no identity and always pass through.
// The first occurrence of a key wins and relative order is preserved, which
// makes Dedup idempotent.
package dedup

import (
	"log/slog"

	"github.com/nao1215/footprint/internal/model"
)

// Key prefixes.
const (
	webPrefix     = "web:"
	profilePrefix = "profile:"
)

// webKeyFields are tried in order to identify a web hit.
var webKeyFields = []string{"url", "html_url", "name"}

// Key returns the identity of a finding and whether it has one.
//
// A web hit without url, html_url and name yields "web:" and a social
// profile without a URL yields "profile:", so all such findings collapse
// into one.
func Key(f model.Finding) (string, bool) {
	switch v := f.(type) {
	case model.WebHit:
		for _, field := range webKeyFields {
			if s, ok := v.StringField(field); ok {
				return webPrefix + s, true
			}
		}
		return webPrefix, true
	case model.SocialProfile:
		return profilePrefix + model.Deref(v.URL), true
	default:
		return "", false
	}
}

// Dedup returns findings without duplicates, keeping the first occurrence of
// every key in its original position. Findings without a key are kept as is.
func Dedup[F model.Finding](findings []F) []F {
	seen := make(map[string]struct{}, len(findings))
	out := make([]F, 0, len(findings))
	for _, f := range findings {
		key, ok := Key(f)
		if !ok {
			out = append(out, f)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Records deduplicates loosely typed records. Payloads are decoded first;
// records that do not decode into any finding are dropped and logged at
// debug level on logger (nil means slog.Default).
func Records(records []model.Record, logger *slog.Logger) []model.Finding {
	if logger == nil {
		logger = slog.Default()
	}
	findings := make([]model.Finding, 0, len(records))
	for i, r := range records {
		f, err := model.Decode(r)
		if err != nil {
			logger.Debug("dropping undecodable record", "index", i, "error", err)
			continue
		}
		findings = append(findings, f)
	}
	return Dedup(findings)
}
