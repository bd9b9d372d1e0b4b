// Package planner composes the storage sources with the expansion engine
// into the read-side views the application renders: calendar windows, the
// dashboard's upcoming and headline lists, and the absence review's
// cancellation list. It owns no state beyond an optional result cache;
// every view is recomputed from fresh snapshots.
package planner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cyp0633/libclubcal/expander"
	"github.com/cyp0633/libclubcal/internal/dates"
	"github.com/cyp0633/libclubcal/storage"
)

// Config tunes a Planner.
type Config struct {
	// Expansion options forwarded to the engine. Zero fields use the
	// engine defaults.
	Expansion expander.ExpansionOptions

	// HeadlineTypeName is the display name of the distinguished
	// appointment type for the dashboard's headline slot, matched
	// case-insensitively against the type catalog. Empty disables the
	// headline partition.
	HeadlineTypeName string

	// Types resolves the headline type name; optional.
	Types storage.TypeCatalog

	// Cache enables memoization of expansion results. Nil disables it.
	Cache *expander.CacheConfig

	Logger *slog.Logger
}

// Planner is the read side of the club calendar.
type Planner struct {
	templates  storage.TemplateSource
	exceptions storage.ExceptionSource
	types      storage.TypeCatalog
	engine     *expander.Engine
	cache      *expander.ExpansionCache

	headlineTypeName string
	logger           *slog.Logger
}

// New creates a Planner over the given snapshot sources.
func New(templates storage.TemplateSource, exceptions storage.ExceptionSource, cfg Config) *Planner {
	engine := expander.NewEngineWithOptions(cfg.Expansion)
	if cfg.Logger != nil {
		engine.SetLogger(cfg.Logger)
	}
	p := &Planner{
		templates:        templates,
		exceptions:       exceptions,
		types:            cfg.Types,
		engine:           engine,
		headlineTypeName: cfg.HeadlineTypeName,
		logger:           cfg.Logger,
	}
	if cfg.Cache != nil {
		p.cache = expander.NewExpansionCache(*cfg.Cache)
	}
	return p
}

// Close releases the cache's background resources, if any.
func (p *Planner) Close() {
	if p.cache != nil {
		p.cache.Close()
	}
}

func (p *Planner) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// expand fetches fresh snapshots and runs the engine, consulting the cache
// when enabled. Cache keys are content hashes, so edits to templates or
// exceptions invalidate by construction.
func (p *Planner) expand(ctx context.Context, now time.Time) ([]expander.Instance, error) {
	templates, err := p.templates.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	exceptions, err := p.exceptions.ListExceptions(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache == nil {
		return p.engine.Expand(templates, exceptions, now), nil
	}

	key := expander.CacheKey(templates, exceptions, now, p.engine.Options())
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}
	instances := p.engine.Expand(templates, exceptions, now)
	p.cache.Set(key, instances)
	return instances, nil
}

// ViewFilter carries the caller-selected type and team filters of a view.
type ViewFilter struct {
	TypeIDs []string
	TeamIDs []string
}

// Window returns the instances a viewer sees between from and to
// (inclusive civil days), time-sorted, cancellations dropped.
func (p *Planner) Window(ctx context.Context, viewerTeams []string, filter ViewFilter, from, to time.Time) ([]expander.Instance, error) {
	instances, err := p.expand(ctx, from)
	if err != nil {
		return nil, err
	}
	visible := expander.Filter(instances, expander.FilterOptions{
		ViewerTeams: viewerTeams,
		TypeIDs:     filter.TypeIDs,
		TeamIDs:     filter.TeamIDs,
	})
	return clampWindow(visible, from, to), nil
}

// Upcoming returns the viewer's next n instances starting today or later.
func (p *Planner) Upcoming(ctx context.Context, viewerTeams []string, now time.Time, n int) ([]expander.Instance, error) {
	instances, err := p.expand(ctx, now)
	if err != nil {
		return nil, err
	}
	visible := expander.Filter(instances, expander.FilterOptions{ViewerTeams: viewerTeams})
	return expander.Upcoming(visible, now, n), nil
}

// HeadlineView is the dashboard's split of upcoming instances into the
// distinguished headline type and the rest.
type HeadlineView struct {
	Headline []expander.Instance
	Others   []expander.Instance
}

// Headline partitions the viewer's upcoming instances by the configured
// headline type, each side truncated to n. Without a catalog or a matching
// type name everything lands in Others.
func (p *Planner) Headline(ctx context.Context, viewerTeams []string, now time.Time, n int) (HeadlineView, error) {
	instances, err := p.expand(ctx, now)
	if err != nil {
		return HeadlineView{}, err
	}
	visible := expander.Filter(instances, expander.FilterOptions{ViewerTeams: viewerTeams})
	upcoming := expander.Upcoming(visible, now, 0)

	typeID, err := p.headlineTypeID(ctx)
	if err != nil {
		return HeadlineView{}, err
	}
	headline, others := expander.HeadlineSplit(upcoming, typeID, n)
	return HeadlineView{Headline: headline, Others: others}, nil
}

func (p *Planner) headlineTypeID(ctx context.Context) (string, error) {
	if p.types == nil || p.headlineTypeName == "" {
		return "", nil
	}
	types, err := p.types.ListTypes(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range types {
		if strings.EqualFold(t.Name, p.headlineTypeName) {
			return t.ID, nil
		}
	}
	p.log().Debug("headline type not found in catalog", "name", p.headlineTypeName)
	return "", nil
}

// Cancellations returns only the cancelled occurrences visible to the
// viewer between from and to, for the absence-review view.
func (p *Planner) Cancellations(ctx context.Context, viewerTeams []string, from, to time.Time) ([]expander.Instance, error) {
	instances, err := p.expand(ctx, from)
	if err != nil {
		return nil, err
	}
	cancelled := expander.Filter(instances, expander.FilterOptions{
		ViewerTeams:   viewerTeams,
		CancelledOnly: true,
	})
	return clampWindow(cancelled, from, to), nil
}

// clampWindow keeps instances whose start falls within the civil days of
// [from, to]. Input is already sorted.
func clampWindow(instances []expander.Instance, from, to time.Time) []expander.Instance {
	lo := dates.StartOfDay(from)
	hi := dates.StartOfDay(to).AddDate(0, 0, 1)
	out := make([]expander.Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.Start.Before(lo) || !inst.Start.Before(hi) {
			continue
		}
		out = append(out, inst)
	}
	return out
}
