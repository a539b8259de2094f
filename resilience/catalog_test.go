package resilience

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		name              string
		p                 Policy
		attempts          int
		initial, maxDelay time.Duration
		threshold         int
		operationTimeout  time.Duration
	}{
		{PresetEmbeddingAPI, EmbeddingAPIPolicy(), 3, time.Second, 8 * time.Second, 5, 30 * time.Second},
		{PresetCompletionAPI, CompletionAPIPolicy(), 3, 2 * time.Second, 16 * time.Second, 3, 120 * time.Second},
		{PresetDatabase, DatabasePolicy(), 5, 500 * time.Millisecond, 4 * time.Second, 10, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.p
			if p.MaxAttempts != tt.attempts || p.InitialDelay != tt.initial || p.MaxDelay != tt.maxDelay ||
				p.CircuitBreakerThreshold != tt.threshold || p.OperationTimeout != tt.operationTimeout {
				t.Errorf("preset = %+v", p)
			}
			if err := p.Resolve().Validate(); err != nil {
				t.Errorf("preset invalid: %v", err)
			}
			if !p.JitterEnabled() {
				t.Error("presets keep jitter enabled")
			}
		})
	}
}

func TestPresetsAreFreshValues(t *testing.T) {
	c := DefaultCatalog()
	p, _ := c.Lookup(PresetDatabase)
	p.MaxAttempts = 99

	again, _ := c.Lookup(PresetDatabase)
	if again.MaxAttempts != 5 {
		t.Error("modifying a looked-up policy changed the catalog")
	}
	if DatabasePolicy().MaxAttempts != 5 {
		t.Error("preset function returned shared state")
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := DefaultCatalog()

	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported ok")
	}
	if got := c.MustLookup("missing"); got != (Policy{}).Resolve() {
		t.Errorf("MustLookup(missing) = %+v, want defaults", got)
	}
	want := []string{PresetCompletionAPI, PresetDatabase, PresetEmbeddingAPI}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestLoadCatalog(t *testing.T) {
	doc := `
policies:
  database:
    max_attempts: 7
    operation_timeout: 5s
  search-api:
    initial_delay: 250ms
    max_delay: 2s
    disable_jitter: true
`
	c, err := LoadCatalog(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	db := c.MustLookup(PresetDatabase)
	if db.MaxAttempts != 7 || db.OperationTimeout != 5*time.Second {
		t.Errorf("database override not applied: %+v", db)
	}
	if db.InitialDelay != 500*time.Millisecond {
		t.Errorf("database kept fields changed: %+v", db)
	}

	search, ok := c.Lookup("search-api")
	if !ok {
		t.Fatal("search-api not loaded")
	}
	if search.InitialDelay != 250*time.Millisecond || search.MaxDelay != 2*time.Second || search.JitterEnabled() {
		t.Errorf("search-api = %+v", search)
	}
	if search.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("search-api MaxAttempts = %d, want default", search.MaxAttempts)
	}

	if _, ok := c.Lookup(PresetEmbeddingAPI); !ok {
		t.Error("built-in presets missing after load")
	}
}

func TestLoadCatalog_Empty(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadCatalog(empty) error = %v", err)
	}
	if len(c) != 3 {
		t.Errorf("len = %d, want 3 presets", len(c))
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("policies:\n  slow:\n    initial_delay: 10s\n    max_delay: 1s\n"))
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("LoadCatalog() error = %v, want ErrInvalidPolicy", err)
	}

	if _, err := LoadCatalog(strings.NewReader("policies: [")); err == nil {
		t.Error("LoadCatalog(malformed) error = nil")
	}
}
