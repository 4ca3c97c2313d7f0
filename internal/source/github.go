package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nao1215/footprint/internal/model"
)

// GitHub defaults and labels.
const (
	DefaultGitHubAPIBase  = "https://api.github.com"
	DefaultMaxGitHubUsers = 5

	// githubCodeResults is the fixed page size of code search.
	githubCodeResults = 5

	GitHubCodeSource     = "GitHub Code Search"
	GitHubCodeResultType = "CodeMatch"
)

type githubUsers struct {
	Items []struct {
		Login   string `json:"login"`
		HTMLURL string `json:"html_url"`
	} `json:"items"`
}

type githubCode struct {
	Items []struct {
		Path       string `json:"path"`
		HTMLURL    string `json:"html_url"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	} `json:"items"`
}

func (d *Deep) githubHeader() http.Header {
	return http.Header{
		"Authorization":        {"token " + d.cfg.GitHubToken},
		"Accept":               {"application/vnd.github+json"},
		"X-Github-Api-Version": {"2022-11-28"},
	}
}

func (d *Deep) githubSearch(ctx context.Context, kind, query string, perPage int, out any) error {
	q := url.Values{}
	q.Set("q", query)
	q.Set("per_page", strconv.Itoa(perPage))
	return getJSON(ctx, d.cfg.Client, d.cfg.GitHubAPIBase+"/search/"+kind+"?"+q.Encode(), d.githubHeader(), out)
}

func (d *Deep) githubUserSearch(ctx context.Context, target string) ([]model.Record, error) {
	var resp githubUsers
	if err := d.githubSearch(ctx, "users", target+" in:login", d.cfg.MaxGitHubUsers, &resp); err != nil {
		return nil, err
	}

	items := resp.Items
	if len(items) > d.cfg.MaxGitHubUsers {
		items = items[:d.cfg.MaxGitHubUsers]
	}
	out := make([]model.Record, 0, len(items))
	for _, u := range items {
		p := model.SocialProfile{Platform: "GitHub", Status: model.StatusFound}
		if u.HTMLURL != "" {
			p.URL = model.StringPtr(u.HTMLURL)
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *Deep) githubCodeSearch(ctx context.Context, target string) ([]model.Record, error) {
	var resp githubCode
	if err := d.githubSearch(ctx, "code", target+" in:file", githubCodeResults, &resp); err != nil {
		return nil, err
	}

	items := resp.Items
	if len(items) > githubCodeResults {
		items = items[:githubCodeResults]
	}
	out := make([]model.Record, 0, len(items))
	for _, it := range items {
		out = append(out, model.WebHit{
			Source:     GitHubCodeSource,
			ResultType: GitHubCodeResultType,
			Data: map[string]any{
				"repository": it.Repository.FullName,
				"path":       it.Path,
				"html_url":   it.HTMLURL,
			},
		})
	}
	return out, nil
}
