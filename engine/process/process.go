// Package process sequences the per-event pipeline: hit selection, particle
// truth analysis, sector partitioning, per-sector graph construction, and
// summary aggregation, with batch fan-out across a bounded worker pool.
package process

import (
	"context"
	"log/slog"
	"sort"

	"github.com/exatrkx/trackgraph/engine/detector"
	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/graph"
	"github.com/exatrkx/trackgraph/engine/particles"
	"github.com/exatrkx/trackgraph/engine/sector"
	"github.com/exatrkx/trackgraph/engine/selection"
	"github.com/exatrkx/trackgraph/engine/summary"
	"github.com/exatrkx/trackgraph/pkg/fn"
)

// Builder runs the graph-construction pipeline for a fixed configuration.
// All fields are immutable after construction, so one Builder is safely
// shared across event workers.
type Builder struct {
	cfg        domain.Config
	layers     *detector.LayerMap
	pairs      []domain.LayerPair
	validPairs map[domain.LayerPair]bool
	maps       detector.ModuleMaps
	log        *slog.Logger
}

// NewBuilder validates the configuration and prepares the shared layer
// tables. maps may be nil; geometric cuts alone then gate edges.
func NewBuilder(cfg domain.Config, maps detector.ModuleMaps, log *slog.Logger) (*Builder, error) {
	if err := domain.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	pairs := detector.LayerPairs(cfg.Endcaps)
	return &Builder{
		cfg:        cfg,
		layers:     detector.NewLayerMap(cfg.Endcaps),
		pairs:      pairs,
		validPairs: detector.PairSet(pairs),
		maps:       maps,
		log:        log,
	}, nil
}

// EventResult is one event's full pipeline output. SectorHits holds the
// selected hits per sector in graph node order, for sinks that need the
// per-node layer and particle alongside the feature matrix.
type EventResult struct {
	EvtID      int
	Graphs     []graph.Graph
	SectorHits map[domain.SectorID][]domain.Hit
	Properties map[int]particles.Property
	Summary    summary.Summary
}

// selected carries an event through the pipeline after hit selection.
type selected struct {
	ev    domain.Event
	hits  []domain.Hit
	parts []domain.Particle
}

// sectored adds the sector partition and truth bookkeeping.
type sectored struct {
	selected
	sectors map[domain.SectorID][]domain.Hit
	bounds  map[domain.SectorID]domain.SectorBounds
	props   map[int]particles.Property
	segs    map[domain.SectorID]map[int]int
}

// ProcessEvent runs the full pipeline for one event.
func (b *Builder) ProcessEvent(ctx context.Context, ev domain.Event) (EventResult, error) {
	pipeline := fn.Then(
		fn.Then(
			fn.TracedStage("process.select", b.selectStage()),
			fn.TracedStage("process.partition", b.partitionStage()),
		),
		fn.TracedStage("process.build", b.buildStage()),
	)
	return pipeline(ctx, ev).Unwrap()
}

func (b *Builder) selectStage() fn.Stage[domain.Event, selected] {
	return func(_ context.Context, ev domain.Event) fn.Result[selected] {
		b.log.Debug("selecting hits", "evtid", ev.ID)
		hits, parts := selection.SelectHits(ev, b.cfg, b.layers)
		return fn.Ok(selected{ev: ev, hits: hits, parts: parts})
	}
}

func (b *Builder) partitionStage() fn.Stage[selected, sectored] {
	return func(_ context.Context, sel selected) fn.Result[sectored] {
		props := particles.Properties(particles.GroupByParticle(sel.hits), sel.parts, b.validPairs)

		sectors, bounds := sector.Split(sel.hits, sector.PhiEdges(b.cfg), sector.EtaEdges(b.cfg))
		segs := make(map[domain.SectorID]map[int]int, len(sectors))
		for s, secHits := range sectors {
			segs[s] = particles.TrackSegments(particles.GroupByParticle(secHits), b.validPairs)
		}
		return fn.Ok(sectored{selected: sel, sectors: sectors, bounds: bounds, props: props, segs: segs})
	}
}

func (b *Builder) buildStage() fn.Stage[sectored, EventResult] {
	return func(_ context.Context, st sectored) fn.Result[EventResult] {
		b.log.Debug("constructing graphs", "evtid", st.ev.ID, "sectors", len(st.sectors))
		cuts := graph.Cuts{PhiSlopeMax: b.cfg.PhiSlopeMax, Z0Max: b.cfg.Z0Max}
		scale := b.cfg.FeatureScale()

		graphs := make([]graph.Graph, 0, len(st.sectors))
		for _, s := range sortedSectors(st.sectors) {
			graphs = append(graphs, graph.Build(st.sectors[s], b.pairs, cuts, b.maps, scale, s))
		}

		sum := summary.Summarize(st.ev.ID, graphs, st.props, st.segs, st.bounds)
		b.log.Info("graph summary",
			"evtid", st.ev.ID,
			"nodes", sum.NNodes,
			"edges", sum.NEdges,
			"efficiency", sum.Efficiency,
			"purity", sum.Purity,
			"boundary_fraction", sum.BoundaryFraction,
		)
		return fn.Ok(EventResult{
			EvtID:      st.ev.ID,
			Graphs:     graphs,
			SectorHits: st.sectors,
			Properties: st.props,
			Summary:    sum,
		})
	}
}

func sortedSectors(sectors map[domain.SectorID][]domain.Hit) []domain.SectorID {
	keys := make([]domain.SectorID, 0, len(sectors))
	for s := range sectors {
		keys = append(keys, s)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Eta != keys[j].Eta {
			return keys[i].Eta < keys[j].Eta
		}
		return keys[i].Phi < keys[j].Phi
	})
	return keys
}
