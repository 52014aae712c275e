package effect

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/ripplesim/internal/compute"
	"github.com/san-kum/ripplesim/internal/config"
	"github.com/san-kum/ripplesim/internal/dynamo"
)

// Factory builds an effect from a validated config.
type Factory func(cfg *config.Config, backend compute.Backend) (Effect, error)

type Registry struct {
	effects map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{effects: make(map[string]Factory)}

	r.effects["ripple"] = func(cfg *config.Config, backend compute.Backend) (Effect, error) {
		return NewRipple(cfg.Ripple, backend)
	}
	r.effects["swarm"] = func(cfg *config.Config, backend compute.Backend) (Effect, error) {
		return NewSwarm(cfg.Swarm, backend, rand.New(rand.NewSource(cfg.Seed)))
	}

	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, fn Factory) {
	r.effects[name] = fn
}

func (r *Registry) Get(name string, cfg *config.Config) (Effect, error) {
	fn, ok := r.effects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownEffect, name)
	}
	return fn(cfg, compute.Select(cfg.Workers))
}

// Build constructs the effect named by cfg.Effect.
func (r *Registry) Build(cfg *config.Config) (Effect, error) {
	return r.Get(cfg.Effect, cfg)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.effects))
	for name := range r.effects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
