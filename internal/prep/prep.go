// Package prep drives the OSM-to-tables pipeline: read an element, shape it,
// optionally validate it, and hand its rows to the sink.
package prep

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osmprep/internal/osm"
	"github.com/sells-group/osmprep/internal/shape"
	"github.com/sells-group/osmprep/internal/sink"
	"github.com/sells-group/osmprep/internal/validate"
)

// Source yields elements one at a time and returns io.EOF when exhausted.
type Source interface {
	Next(ctx context.Context) (osm.Element, error)
}

// Options configures a run.
type Options struct {
	Shaper shape.Shaper
	// Validator is applied to every shaped set; nil disables validation.
	Validator validate.Validator
	Sink      sink.Sink
	// ProgressEvery logs progress every N elements (0 = never).
	ProgressEvery int
	RunID         string
}

// Stats summarizes a run.
type Stats struct {
	Nodes       int64
	Ways        int64
	DroppedTags int64
	Rows        map[string]int64
	Elapsed     time.Duration
}

// Process consumes src until EOF. Each element is shaped, validated, and
// written before the next is read. The first error aborts the run; the sink
// is flushed on success and left to the caller to close.
func Process(ctx context.Context, src Source, opts Options) (Stats, error) {
	if opts.Sink == nil {
		return Stats{}, eris.New("prep: no sink configured")
	}
	v := opts.Validator
	if v == nil {
		v = validate.Nop{}
	}

	log := zap.L().With(
		zap.String("component", "prep"),
		zap.String("run_id", opts.RunID),
	)

	start := time.Now()
	var stats Stats

	for {
		el, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, eris.Wrap(err, "prep: read element")
		}

		set, err := opts.Shaper.Shape(el)
		if err != nil {
			return stats, eris.Wrap(err, "prep: shape element")
		}
		if set.Empty() {
			continue
		}

		if err := v.Validate(set); err != nil {
			return stats, eris.Wrapf(err, "prep: %s %s failed validation", el.Kind, el.ID())
		}

		for _, b := range set.Batches() {
			if len(b.Rows) == 0 {
				continue
			}
			if err := opts.Sink.Write(ctx, b.Table, b.Rows); err != nil {
				return stats, eris.Wrapf(err, "prep: write %s for %s %s", b.Table.Name, el.Kind, el.ID())
			}
		}

		switch set.Kind {
		case osm.Node:
			stats.Nodes++
		case osm.Way:
			stats.Ways++
		}
		if set.Dropped > 0 {
			stats.DroppedTags += int64(set.Dropped)
			log.Debug("dropped tags with problem characters",
				zap.String("kind", string(el.Kind)),
				zap.String("id", el.ID()),
				zap.Int("dropped", set.Dropped),
			)
		}

		if n := stats.Nodes + stats.Ways; opts.ProgressEvery > 0 && n%int64(opts.ProgressEvery) == 0 {
			log.Info("progress",
				zap.Int64("elements", n),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}

	if err := opts.Sink.Flush(ctx); err != nil {
		return stats, eris.Wrap(err, "prep: flush sink")
	}

	stats.Rows = opts.Sink.Counts()
	stats.Elapsed = time.Since(start)

	log.Info("run complete",
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("ways", stats.Ways),
		zap.Int64("dropped_tags", stats.DroppedTags),
		zap.Duration("elapsed", stats.Elapsed),
	)

	return stats, nil
}
