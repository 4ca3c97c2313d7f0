package model

import (
	"errors"
	"reflect"
	"testing"
)

// TestSniff tests shape-based variant detection.
func TestSniff(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		record   Record
		expected Kind
	}{
		{
			name:     "typed domain record",
			record:   DomainRecord{IsRegistered: true},
			expected: KindDomain,
		},
		{
			name:     "typed web hit",
			record:   WebHit{Source: "Bing", ResultType: "WebPage"},
			expected: KindWeb,
		},
		{
			name:     "payload with platform and status",
			record:   Payload{"platform": "GitHub", "status": "FOUND"},
			expected: KindSocial,
		},
		{
			name:     "payload with source and severity",
			record:   Payload{"source": "NVD", "severity": "HIGH"},
			expected: KindVulnerability,
		},
		{
			name:     "payload with source and result_type",
			record:   Payload{"source": "Bing", "result_type": "WebPage"},
			expected: KindWeb,
		},
		{
			name:     "payload with registration flag",
			record:   Payload{"is_registered": true},
			expected: KindDomain,
		},
		{
			name:     "payload with platform only",
			record:   Payload{"platform": "GitHub"},
			expected: KindUnknown,
		},
		{
			name:     "nil record",
			record:   nil,
			expected: KindUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Sniff(tc.record); got != tc.expected {
				t.Errorf("Sniff() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestDecode tests the tagged-union decoder.
func TestDecode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		record   Record
		expected Finding
		wantErr  bool
	}{
		{
			name:     "typed finding passes through",
			record:   SocialProfile{Platform: "GitHub", Status: StatusFound},
			expected: SocialProfile{Platform: "GitHub", Status: StatusFound},
		},
		{
			name: "domain payload",
			record: Payload{
				"is_registered":   true,
				"owner_simulated": "Acme Inc",
				"expiration_date": "2030-01-01",
			},
			expected: DomainRecord{
				IsRegistered:   true,
				Owner:          StringPtr("Acme Inc"),
				ExpirationDate: StringPtr("2030-01-01"),
			},
		},
		{
			name:     "social payload with null url",
			record:   Payload{"platform": "Reddit", "url_found": nil, "status": StatusNotFoundOrPrivate},
			expected: SocialProfile{Platform: "Reddit", Status: StatusNotFoundOrPrivate},
		},
		{
			name: "vulnerability payload",
			record: Payload{
				"source":      "NVD",
				"cve_id":      "CVE-2025-0001",
				"severity":    "HIGH",
				"description": "Example",
			},
			expected: VulnerabilityFinding{
				Source:      "NVD",
				CVEID:       StringPtr("CVE-2025-0001"),
				Severity:    "HIGH",
				Description: "Example",
			},
		},
		{
			name: "web payload with map data",
			record: Payload{
				"source":      "Bing",
				"result_type": "WebPage",
				"data":        map[string]any{"name": "X", "url": "http://x"},
			},
			expected: WebHit{
				Source:     "Bing",
				ResultType: "WebPage",
				Data:       map[string]any{"name": "X", "url": "http://x"},
			},
		},
		{
			name: "web payload with scalar data is wrapped",
			record: Payload{
				"source":      "Google Dorking (Simulated)",
				"result_type": "Sensitive File Exposure",
				"data":        "filetype:env secret",
			},
			expected: WebHit{
				Source:     "Google Dorking (Simulated)",
				ResultType: "Sensitive File Exposure",
				Data:       map[string]any{"value": "filetype:env secret"},
			},
		},
		{
			name: "vulnerability wins over web by priority",
			record: Payload{
				"source":      "NVD",
				"severity":    "LOW",
				"description": "d",
				"result_type": "WebPage",
			},
			expected: VulnerabilityFinding{Source: "NVD", Severity: "LOW", Description: "d"},
		},
		{
			name: "invalid domain flag falls through to social",
			record: Payload{
				"is_registered": "yes",
				"platform":      "GitHub",
				"status":        StatusFound,
			},
			expected: SocialProfile{Platform: "GitHub", Status: StatusFound},
		},
		{
			name:    "vulnerability payload missing description",
			record:  Payload{"source": "NVD", "severity": "HIGH"},
			wantErr: true,
		},
		{
			name:    "wrong type for platform",
			record:  Payload{"platform": 42, "status": "FOUND"},
			wantErr: true,
		},
		{
			name:    "empty payload",
			record:  Payload{},
			wantErr: true,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tc.record)
			if tc.wantErr {
				if !errors.Is(err, ErrUndecodable) {
					t.Fatalf("expected ErrUndecodable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Decode() = %#v, expected %#v", got, tc.expected)
			}
		})
	}
}

// TestDecodeAs tests decoding into a specific variant.
func TestDecodeAs(t *testing.T) {
	t.Parallel()

	t.Run("typed finding of another kind is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeAs(SocialProfile{Platform: "GitHub", Status: StatusFound}, KindWeb)
		if !errors.Is(err, ErrKindMismatch) {
			t.Errorf("expected ErrKindMismatch, got %v", err)
		}
	})

	t.Run("payload is coerced into the requested kind", func(t *testing.T) {
		t.Parallel()

		// Shaped like a vulnerability too, but the caller asked for web.
		p := Payload{"source": "S", "severity": "LOW", "description": "d", "result_type": "WebPage"}
		got, err := DecodeAs(p, KindWeb)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Kind() != KindWeb {
			t.Errorf("expected web hit, got %v", got.Kind())
		}
	})

	t.Run("payload missing required keys fails", func(t *testing.T) {
		t.Parallel()

		if _, err := DecodeAs(Payload{"platform": "GitHub"}, KindSocial); err == nil {
			t.Error("expected error for payload without status")
		}
	})
}
