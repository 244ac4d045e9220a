package shipper

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping carriers.
type Registry struct {
	carriers map[string]Carrier
	logger   *otelzap.Logger
	mu       sync.RWMutex
}

// CarrierResult is the outcome of a rate request against one carrier.
type CarrierResult struct {
	Carrier  string
	Response *RateResponse
	Err      error
	// Duration is how long the carrier call took.
	Duration time.Duration
}

// NewRegistry creates a new carrier registry.
func NewRegistry(logger *otelzap.Logger) *Registry {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	return &Registry{
		carriers: make(map[string]Carrier),
		logger:   logger,
	}
}

// Register adds a carrier to the registry. A carrier registered under an
// existing name replaces the previous one.
func (r *Registry) Register(c Carrier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.carriers[c.Name()]; exists {
		r.logger.Warn("Carrier already registered, overwriting", zap.String("carrier", c.Name()))
	}
	r.carriers[c.Name()] = c
}

// Get returns a carrier by name.
func (r *Registry) Get(name string) (Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.carriers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered carriers ordered by name.
func (r *Registry) All() []Carrier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Carrier, 0, len(r.carriers))
	for _, c := range r.carriers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Names returns the sorted names of all registered carriers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.carriers))
	for name := range r.carriers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carriers)
}

// GetAllRates fetches rates from all registered carriers in parallel.
// A failing carrier does not fail the others; its error is reported in
// its CarrierResult.
func (r *Registry) GetAllRates(ctx context.Context, req *RateRequest) ([]CarrierResult, error) {
	carriers := r.All()
	if len(carriers) == 0 {
		return nil, ErrCarrierNotFound
	}
	names := make([]string, len(carriers))
	for i, c := range carriers {
		names[i] = c.Name()
	}
	return r.GetRatesFromCarriers(ctx, req, names)
}

// GetRatesFromCarriers fetches rates from specific carriers in parallel.
// An empty carrier list means all carriers. Results are ordered by carrier name.
func (r *Registry) GetRatesFromCarriers(ctx context.Context, req *RateRequest, carriers []string) ([]CarrierResult, error) {
	if len(carriers) == 0 {
		return r.GetAllRates(ctx, req)
	}

	results := make([]CarrierResult, len(carriers))
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range carriers {
		g.Go(func() error {
			results[i].Carrier = name
			c, err := r.Get(name)
			if err != nil {
				results[i].Err = err
				return nil
			}
			start := time.Now()
			resp, err := c.GetRates(ctx, req)
			results[i].Duration = time.Since(start)
			if err != nil {
				r.logger.Ctx(ctx).Error("Carrier rate request failed",
					zap.String("carrier", name),
					zap.String("code", ErrorCode(err)),
					zap.Error(err),
				)
				results[i].Err = err
				return nil // Don't fail the group, continue with other carriers
			}
			results[i].Response = resp
			return nil
		})
	}

	_ = g.Wait()
	sort.SliceStable(results, func(i, j int) bool { return results[i].Carrier < results[j].Carrier })
	return results, nil
}
