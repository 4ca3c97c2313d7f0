package source

import (
	"context"
	"strings"

	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/provider"
)

// Labels of the simulated search-engine hits.
const (
	DorkSource       = "Google Dorking (Simulated)"
	DorkResultType   = "Sensitive File Exposure"
	VolumeSource     = "General Search Volume"
	VolumeResultType = "Page Count"
)

var (
	dorkTokens = []string{"dev", "admin", "backup", "staging"}
	dorks      = []string{"filetype:pdf password list", "intitle:index of /backup", "filetype:env secret"}
)

// Dork simulates search-engine intelligence. Its output is labeled as
// simulated and involves no network access.
type Dork struct {
	rand Rand
}

// NewDork creates the dork provider. A nil r uses DefaultRand.
func NewDork(r Rand) *Dork {
	if r == nil {
		r = DefaultRand
	}
	return &Dork{rand: r}
}

// Name implements provider.Provider.
func (d *Dork) Name() string { return "dork" }

// Collect implements provider.Provider.
func (d *Dork) Collect(_ context.Context, target string) (provider.Result, error) {
	hits := make([]model.WebHit, 0, 2)

	lower := strings.ToLower(target)
	for _, token := range dorkTokens {
		if strings.Contains(lower, token) {
			hits = append(hits, model.WebHit{
				Source:     DorkSource,
				ResultType: DorkResultType,
				Data:       map[string]any{"dork": dorks[d.rand.IntN(len(dorks))]},
			})
			break
		}
	}

	hits = append(hits, model.WebHit{
		Source:     VolumeSource,
		ResultType: VolumeResultType,
		Data:       map[string]any{"pages": 10 + d.rand.IntN(4991)},
	})
	return provider.BatchOf(hits), nil
}
