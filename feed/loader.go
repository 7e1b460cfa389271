package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/lab1702/solar-web/solar"
)

// Recorder receives the outcome of each load
type Recorder interface {
	RecordFeed(source string, comets int, err error)
}

// Fetcher is the remote side of a Loader
type Fetcher interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// Loader serves comet bodies from the cache, falling back to the remote feed
type Loader struct {
	fetcher  Fetcher
	cache    Cache
	ttl      time.Duration
	max      int
	recorder Recorder
	log      *slog.Logger
}

// NewLoader wires a loader; cache and recorder may be nil
func NewLoader(fetcher Fetcher, cache Cache, ttl time.Duration, max int, recorder Recorder) *Loader {
	return &Loader{
		fetcher:  fetcher,
		cache:    cache,
		ttl:      ttl,
		max:      max,
		recorder: recorder,
		log:      slog.With("component", "comet_loader"),
	}
}

// Load returns the comet bodies. Cache errors are logged and bypassed; only a
// remote failure is returned.
func (l *Loader) Load(ctx context.Context) ([]solar.BodySpec, error) {
	if l.cache != nil {
		specs, ok, err := l.cache.Get(ctx)
		switch {
		case err != nil:
			l.log.Warn("Comet cache read failed", "error", err)
			l.record("cache", 0, err)
		case ok:
			l.log.Debug("Comets served from cache", "count", len(specs))
			l.record("cache", len(specs), nil)
			return specs, nil
		}
	}

	records, err := l.fetcher.Fetch(ctx)
	if err != nil {
		l.record("remote", 0, err)
		return nil, err
	}
	specs := Specs(records, l.max)
	l.record("remote", len(specs), nil)

	if l.cache != nil {
		if err := l.cache.Set(ctx, specs, l.ttl); err != nil {
			l.log.Warn("Comet cache write failed", "error", err)
		}
	}
	l.log.Info("Comets loaded", "records", len(records), "comets", len(specs))
	return specs, nil
}

func (l *Loader) record(source string, n int, err error) {
	if l.recorder != nil {
		l.recorder.RecordFeed(source, n, err)
	}
}
