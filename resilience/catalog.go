package resilience

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Preset names registered in DefaultCatalog.
const (
	PresetEmbeddingAPI  = "embedding-api"
	PresetCompletionAPI = "completion-api"
	PresetDatabase      = "database"
)

// EmbeddingAPIPolicy returns the preset for generative embedding APIs.
func EmbeddingAPIPolicy() Policy {
	return Policy{
		MaxAttempts:             3,
		InitialDelay:            time.Second,
		MaxDelay:                8 * time.Second,
		BackoffMultiplier:       2,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
		OperationTimeout:        30 * time.Second,
	}
}

// CompletionAPIPolicy returns the preset for long-running chat completion APIs.
func CompletionAPIPolicy() Policy {
	return Policy{
		MaxAttempts:             3,
		InitialDelay:            2 * time.Second,
		MaxDelay:                16 * time.Second,
		BackoffMultiplier:       2,
		CircuitBreakerThreshold: 3,
		CircuitBreakerTimeout:   60 * time.Second,
		OperationTimeout:        120 * time.Second,
	}
}

// DatabasePolicy returns the preset for database queries.
func DatabasePolicy() Policy {
	return Policy{
		MaxAttempts:             5,
		InitialDelay:            500 * time.Millisecond,
		MaxDelay:                4 * time.Second,
		BackoffMultiplier:       2,
		CircuitBreakerThreshold: 10,
		CircuitBreakerTimeout:   30 * time.Second,
		OperationTimeout:        10 * time.Second,
	}
}

// Catalog maps preset names to policies. Values are copies, so callers may
// override a looked-up policy without affecting the catalog.
type Catalog map[string]Policy

// DefaultCatalog returns a fresh catalog holding the built-in presets.
func DefaultCatalog() Catalog {
	return Catalog{
		PresetEmbeddingAPI:  EmbeddingAPIPolicy(),
		PresetCompletionAPI: CompletionAPIPolicy(),
		PresetDatabase:      DatabasePolicy(),
	}
}

// Lookup returns the named policy.
func (c Catalog) Lookup(name string) (Policy, bool) {
	p, ok := c[name]
	return p, ok
}

// MustLookup returns the named policy or the resolved defaults when the
// name is not registered.
func (c Catalog) MustLookup(name string) Policy {
	if p, ok := c[name]; ok {
		return p
	}
	return Policy{}.Resolve()
}

// Names returns the registered preset names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// catalogFile is the YAML document accepted by LoadCatalog.
type catalogFile struct {
	Policies map[string]Policy `yaml:"policies"`
}

// LoadCatalog reads policy overrides from YAML and merges them over the
// built-in presets. Durations use Go duration syntax:
//
//	policies:
//	  database:
//	    max_attempts: 7
//	    operation_timeout: 5s
//	  search-api:
//	    initial_delay: 250ms
//	    max_delay: 2s
//
// Entries naming a built-in preset override only the fields they set; other
// entries start from the resolved defaults.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("resilience: decode catalog: %w", err)
	}

	catalog := DefaultCatalog()
	for name, override := range file.Policies {
		base, ok := catalog[name]
		if !ok {
			base = Policy{}.Resolve()
		}
		merged := base.Override(override)
		if err := merged.Resolve().Validate(); err != nil {
			return nil, fmt.Errorf("resilience: policy %q: %w", name, err)
		}
		catalog[name] = merged
	}
	return catalog, nil
}
