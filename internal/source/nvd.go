package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/provider"
)

// DefaultNVDEndpoint is the NVD CVE API 2.0 endpoint.
const DefaultNVDEndpoint = "https://services.nvd.nist.gov/rest/json/cves/2.0"

// DefaultNVDResults caps the number of CVEs reported per target.
const DefaultNVDResults = 5

// NVDSource is the source label of NVD findings.
const NVDSource = "NVD"

// NVDConfig configures the NVD provider.
type NVDConfig struct {
	Client     *http.Client
	Endpoint   string
	APIKey     string
	MaxResults int
	Logger     *slog.Logger
}

// NVD searches the National Vulnerability Database by keyword.
//
// It emits loosely typed model.Payload records rather than typed findings;
// the classifier decodes them.
type NVD struct {
	cfg NVDConfig
}

// NewNVD creates the NVD provider.
func NewNVD(cfg NVDConfig) *NVD {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultNVDEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultNVDResults
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &NVD{cfg: cfg}
}

// Name implements provider.Provider.
func (n *NVD) Name() string { return "nvd" }

// Collect implements provider.Provider.
func (n *NVD) Collect(ctx context.Context, target string) (provider.Result, error) {
	q := url.Values{}
	q.Set("keywordSearch", target)
	q.Set("resultsPerPage", strconv.Itoa(n.cfg.MaxResults))

	header := http.Header{"Accept": {"application/json"}}
	if n.cfg.APIKey != "" {
		header.Set("apiKey", n.cfg.APIKey)
	}

	var resp nvdResponse
	if err := getJSON(ctx, n.cfg.Client, n.cfg.Endpoint+"?"+q.Encode(), header, &resp); err != nil {
		return provider.Result{}, fmt.Errorf("nvd search: %w", err)
	}

	records := make([]model.Record, 0, len(resp.Vulnerabilities))
	for _, v := range resp.Vulnerabilities {
		if len(records) == n.cfg.MaxResults {
			break
		}
		records = append(records, model.Payload{
			"source":      NVDSource,
			"cve_id":      v.CVE.ID,
			"severity":    v.CVE.severity(),
			"description": v.CVE.description(),
		})
	}
	n.cfg.Logger.Debug("nvd search complete", "target", target, "total", resp.TotalResults, "kept", len(records))
	return provider.Batch(records...), nil
}

type nvdResponse struct {
	TotalResults    int `json:"totalResults"`
	Vulnerabilities []struct {
		CVE nvdCVE `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVE struct {
	ID           string `json:"id"`
	Descriptions []struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
	} `json:"descriptions"`
	Metrics struct {
		V40 []nvdMetric `json:"cvssMetricV40"`
		V31 []nvdMetric `json:"cvssMetricV31"`
		V30 []nvdMetric `json:"cvssMetricV30"`
		V2  []nvdMetric `json:"cvssMetricV2"`
	} `json:"metrics"`
}

type nvdMetric struct {
	BaseSeverity string `json:"baseSeverity"`
	CVSSData     struct {
		BaseSeverity string `json:"baseSeverity"`
	} `json:"cvssData"`
}

// severity prefers the newest CVSS version. V3 and V4 carry the label in
// cvssData; V2 carries it on the metric itself.
func (c nvdCVE) severity() string {
	for _, metrics := range [][]nvdMetric{c.Metrics.V40, c.Metrics.V31, c.Metrics.V30, c.Metrics.V2} {
		for _, m := range metrics {
			if m.CVSSData.BaseSeverity != "" {
				return m.CVSSData.BaseSeverity
			}
			if m.BaseSeverity != "" {
				return m.BaseSeverity
			}
		}
	}
	return model.SeverityUnknown.String()
}

func (c nvdCVE) description() string {
	for _, d := range c.Descriptions {
		if d.Lang == "en" {
			return d.Value
		}
	}
	if len(c.Descriptions) > 0 {
		return c.Descriptions[0].Value
	}
	return ""
}
