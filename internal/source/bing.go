package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nao1215/footprint/internal/model"
)

// Bing defaults and labels.
const (
	DefaultBingEndpoint   = "https://api.bing.microsoft.com/v7.0/search"
	DefaultMaxBingResults = 6

	BingSource     = "Bing Web Search"
	BingResultType = "WebPage"
)

// Labels of simulated deep search hits.
const (
	SimulatedSource     = "Simulated Deep Crawl"
	SimulatedResultType = "Paste Mention"
)

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

func (d *Deep) bingSearch(ctx context.Context, target string) ([]model.Record, error) {
	q := url.Values{}
	q.Set("q", target)
	q.Set("count", strconv.Itoa(d.cfg.MaxBingResults))
	q.Set("textDecorations", "false")
	q.Set("textFormat", "Raw")

	header := http.Header{
		"Ocp-Apim-Subscription-Key": {d.cfg.BingAPIKey},
		"Accept":                    {"application/json"},
	}

	var resp bingResponse
	if err := getJSON(ctx, d.cfg.Client, d.cfg.BingEndpoint+"?"+q.Encode(), header, &resp); err != nil {
		return nil, err
	}

	pages := resp.WebPages.Value
	if len(pages) > d.cfg.MaxBingResults {
		pages = pages[:d.cfg.MaxBingResults]
	}
	out := make([]model.Record, 0, len(pages))
	for _, p := range pages {
		out = append(out, model.WebHit{
			Source:     BingSource,
			ResultType: BingResultType,
			Data:       map[string]any{"name": p.Name, "url": p.URL, "snippet": p.Snippet},
		})
	}
	return out, nil
}
