package source

import (
	"context"
	"testing"

	"github.com/nao1215/footprint/internal/model"
)

// TestDorkCollect tests the simulated dorking output.
func TestDorkCollect(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		target   string
		ints     []int
		wantDork string
		pages    int
	}{
		{name: "plain target", target: "johndoe", ints: []int{90}, pages: 100},
		{name: "staging target", target: "Staging.example.com", ints: []int{2, 0}, wantDork: "filetype:env secret", pages: 10},
		{name: "admin target", target: "admin", ints: []int{1, 4990}, wantDork: "intitle:index of /backup", pages: 5000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res, err := NewDork(&scriptedRand{ints: tc.ints}).Collect(context.Background(), tc.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			records := res.Records()

			wantLen := 1
			if tc.wantDork != "" {
				wantLen = 2
			}
			if len(records) != wantLen {
				t.Fatalf("expected %d hits, got %d", wantLen, len(records))
			}

			if tc.wantDork != "" {
				hit, _ := records[0].(model.WebHit) //nolint:errcheck // checked by fields
				if hit.Source != DorkSource || hit.ResultType != DorkResultType || hit.Data["dork"] != tc.wantDork {
					t.Errorf("unexpected dork hit %+v", hit)
				}
			}

			volume, _ := records[len(records)-1].(model.WebHit) //nolint:errcheck // checked by fields
			if volume.Source != VolumeSource || volume.ResultType != VolumeResultType {
				t.Errorf("unexpected volume hit %+v", volume)
			}
			if volume.Data["pages"] != tc.pages {
				t.Errorf("expected %d pages, got %v", tc.pages, volume.Data["pages"])
			}
		})
	}
}
