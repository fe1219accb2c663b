// Command sweep runs the graph builder over a grid of sector configurations
// and reports how purity, efficiency and graph size respond to sector
// granularity. Output is a JSON array of per-cell batch statistics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/exatrkx/trackgraph/engine/dataset"
	"github.com/exatrkx/trackgraph/engine/detector"
	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/process"
	"github.com/exatrkx/trackgraph/engine/summary"
)

// Cell is one grid point of the sweep with its aggregated batch results.
type Cell struct {
	NEtaSectors int                `json:"n_eta_sectors"`
	NPhiSectors int                `json:"n_phi_sectors"`
	Events      int                `json:"events"`
	Elapsed     float64            `json:"elapsed_seconds"`
	Stats       summary.BatchStats `json:"stats"`
}

func main() {
	var (
		dataDir   = flag.String("dir", "", "directory with TrackML event CSV files (required)")
		outFile   = flag.String("out", "sweep.json", "output file for the sweep results")
		evtMin    = flag.Int("evt-min", 0, "lowest event id to process (0 = no lower bound)")
		evtMax    = flag.Int("evt-max", 0, "highest event id to process (0 = no upper bound)")
		maxEvents = flag.Int("max-events", 16, "events per grid cell (0 = all)")
		workers   = flag.Int("workers", 8, "concurrent event workers")
		etaGrid   = flag.String("eta-grid", "1,2,4,8", "comma-separated eta sector counts")
		phiGrid   = flag.String("phi-grid", "1,2,4,8", "comma-separated phi sector counts")
		moduleMap = flag.String("module-map", "", "path to module adjacency map JSON (omit to disable)")

		ptMin       = flag.Float64("pt-min", 2, "transverse momentum cut in GeV")
		phiSlopeMax = flag.Float64("phi-slope-max", 0.0006, "phi slope edge cut")
		z0Max       = flag.Float64("z0-max", 15000, "z0 edge cut in mm")
		endcaps     = flag.Bool("endcaps", true, "include endcap layers and transition pairs")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if *dataDir == "" {
		log.Error("missing required -dir flag")
		os.Exit(2)
	}

	etas, err := parseGrid(*etaGrid)
	if err != nil {
		log.Error("bad -eta-grid", "error", err)
		os.Exit(2)
	}
	phis, err := parseGrid(*phiGrid)
	if err != nil {
		log.Error("bad -phi-grid", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var maps detector.ModuleMaps
	if *moduleMap != "" {
		maps, err = detector.LoadModuleMaps(*moduleMap)
		if err != nil {
			log.Error("load module maps failed", "path", *moduleMap, "error", err)
			os.Exit(1)
		}
	}

	refs, err := dataset.Discover(*dataDir)
	if err != nil {
		log.Error("discover events failed", "dir", *dataDir, "error", err)
		os.Exit(1)
	}
	refs = dataset.FilterRange(refs, *evtMin, *evtMax)
	if *maxEvents > 0 && len(refs) > *maxEvents {
		refs = refs[:*maxEvents]
	}
	if len(refs) == 0 {
		log.Warn("no events to process", "dir", *dataDir)
		return
	}
	log.Info("sweeping sector grid", "events", len(refs), "eta_grid", etas, "phi_grid", phis)

	cells := make([]Cell, 0, len(etas)*len(phis))
	for _, nEta := range etas {
		for _, nPhi := range phis {
			cfg := domain.Config{
				PtMin:            *ptMin,
				PhiSlopeMax:      *phiSlopeMax,
				Z0Max:            *z0Max,
				NPhiSectors:      nPhi,
				NEtaSectors:      nEta,
				EtaRange:         [2]float64{-5, 5},
				Endcaps:          *endcaps,
				RemoveNoise:      true,
				RemoveDuplicates: true,
			}
			cell, err := runCell(ctx, cfg, maps, refs, *workers, log)
			if err != nil {
				log.Error("sweep cell failed", "n_eta", nEta, "n_phi", nPhi, "error", err)
				os.Exit(1)
			}
			cells = append(cells, cell)
		}
	}

	data, err := json.MarshalIndent(cells, "", "  ")
	if err != nil {
		log.Error("marshal sweep results failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outFile, data, 0o644); err != nil {
		log.Error("write sweep results failed", "path", *outFile, "error", err)
		os.Exit(1)
	}
	log.Info("sweep complete", "cells", len(cells), "out", *outFile)
}

func runCell(ctx context.Context, cfg domain.Config, maps detector.ModuleMaps, refs []domain.EventRef, workers int, log *slog.Logger) (Cell, error) {
	// Per-event logs would swamp the sweep output.
	builder, err := process.NewBuilder(cfg, maps, slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err != nil {
		return Cell{}, err
	}

	start := time.Now()
	results, err := builder.ProcessBatch(ctx, dataset.FileLoader{}, refs, workers)
	if err != nil {
		return Cell{}, err
	}
	elapsed := time.Since(start)

	sums := make([]summary.Summary, len(results))
	for i, res := range results {
		sums[i] = res.Summary
	}
	stats := summary.Aggregate(sums)
	log.Info("sweep cell",
		"n_eta", cfg.NEtaSectors,
		"n_phi", cfg.NPhiSectors,
		"elapsed", elapsed,
		"edges_mean", stats.NEdges.Mean,
		"purity", stats.Purity.Mean,
		"efficiency", stats.Efficiency.Mean,
	)
	return Cell{
		NEtaSectors: cfg.NEtaSectors,
		NPhiSectors: cfg.NPhiSectors,
		Events:      len(results),
		Elapsed:     elapsed.Seconds(),
		Stats:       stats,
	}, nil
}

func parseGrid(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
