package pipeline

import (
	"log/slog"

	"github.com/nao1215/footprint/internal/dedup"
	"github.com/nao1215/footprint/internal/model"
)

// Buckets holds classified findings, one bucket per variant, each in
// provider order.
type Buckets struct {
	Domain        *model.DomainRecord
	Social        []model.SocialProfile
	Vulnerability []model.VulnerabilityFinding
	Web           []model.WebHit
}

// Classifier turns provider outcomes into typed buckets.
type Classifier struct {
	logger *slog.Logger
	dedup  bool
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierLogger sets the classifier logger.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithCrossProviderDedup deduplicates the social and web buckets across
// providers after classification. Off by default.
func WithCrossProviderDedup(enabled bool) ClassifierOption {
	return func(c *Classifier) {
		c.dedup = enabled
	}
}

// NewClassifier creates a classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Classify merges outcomes into buckets.
//
// Failed outcomes are logged and skipped. A single record that decodes to a
// domain record fills the domain bucket, the last one winning. A batch goes
// to the bucket of its first element's variant; elements that do not decode
// into that variant are dropped. Everything else is discarded.
func (c *Classifier) Classify(outcomes []Outcome) Buckets {
	b := Buckets{
		Social:        make([]model.SocialProfile, 0),
		Vulnerability: make([]model.VulnerabilityFinding, 0),
		Web:           make([]model.WebHit, 0),
	}

	for _, o := range outcomes {
		if o.Failed() {
			c.logger.Error("provider failed", "provider", o.Provider, "error", o.Err)
			continue
		}

		switch {
		case o.Result.IsBatch():
			c.classifyBatch(&b, o.Provider, o.Result.Records())
		case o.Result.IsEmpty():
			c.logger.Debug("provider returned nothing", "provider", o.Provider)
		default:
			c.classifySingle(&b, o.Provider, o.Result.Record())
		}
	}

	if c.dedup {
		b.Social = dedup.Dedup(b.Social)
		b.Web = dedup.Dedup(b.Web)
	}
	return b
}

func (c *Classifier) classifySingle(b *Buckets, name string, r model.Record) {
	f, err := model.Decode(r)
	if err != nil {
		c.logger.Debug("discarding undecodable record", "provider", name, "error", err)
		return
	}
	d, ok := f.(model.DomainRecord)
	if !ok {
		c.logger.Debug("discarding single non-domain record", "provider", name, "kind", f.Kind())
		return
	}
	b.Domain = &d
}

func (c *Classifier) classifyBatch(b *Buckets, name string, records []model.Record) {
	if len(records) == 0 {
		return
	}

	kind := model.Sniff(records[0])
	switch kind {
	case model.KindSocial, model.KindVulnerability, model.KindWeb:
	default:
		c.logger.Debug("discarding unclassifiable batch", "provider", name, "kind", kind, "size", len(records))
		return
	}

	for i, r := range records {
		f, err := model.DecodeAs(r, kind)
		if err != nil {
			c.logger.Debug("dropping batch element", "provider", name, "index", i, "kind", kind, "error", err)
			continue
		}
		switch v := f.(type) {
		case model.SocialProfile:
			b.Social = append(b.Social, v)
		case model.VulnerabilityFinding:
			b.Vulnerability = append(b.Vulnerability, v)
		case model.WebHit:
			b.Web = append(b.Web, v)
		}
	}
}
