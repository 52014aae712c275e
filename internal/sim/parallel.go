package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Factory assembles an independent simulator for one ensemble member.
type Factory func(seed int64) (*Simulator, error)

// Ensemble runs independent simulators concurrently, one seed each.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// SetLimit caps the number of members running at once; n <= 0 means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			s, err := e.build(e.seedStart + int64(i))
			if err != nil {
				return err
			}
			results[i], err = s.Run(ctx, cfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
