// Command build constructs sectorized hit graphs for a batch of events and
// writes them out as JSON, with optional Neo4j, Qdrant and NATS sinks.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/exatrkx/trackgraph/engine/dataset"
	"github.com/exatrkx/trackgraph/engine/detector"
	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/featurestore"
	"github.com/exatrkx/trackgraph/engine/graphstore"
	"github.com/exatrkx/trackgraph/engine/process"
	"github.com/exatrkx/trackgraph/engine/summary"
	"github.com/exatrkx/trackgraph/pkg/metrics"
	"github.com/exatrkx/trackgraph/pkg/mid"
	"github.com/exatrkx/trackgraph/pkg/natsutil"
)

var met = metrics.New()

var (
	mEventsTotal  = met.Counter("trackgraph_events_total", "Events processed")
	mEventsFailed = met.Counter("trackgraph_events_failed_total", "Events that failed processing")
	mGraphsTotal  = met.Counter("trackgraph_graphs_total", "Sector graphs built")
	mNodesTotal   = met.Counter("trackgraph_nodes_total", "Graph nodes built")
	mEdgesTotal   = met.Counter("trackgraph_edges_total", "Graph edges built")
	mNeo4jWrites  = met.Counter("trackgraph_neo4j_writes_total", "Sector graphs written to Neo4j")
	mQdrantWrites = met.Counter("trackgraph_qdrant_writes_total", "Node feature batches written to Qdrant")
	mBatchDur     = met.Histogram("trackgraph_batch_duration_seconds", "Wall time per batch", nil)
)

func main() {
	var (
		dataDir   = flag.String("dir", "", "directory with TrackML event CSV files (required)")
		outDir    = flag.String("out", "", "directory for JSON graph output (omit to skip)")
		evtMin    = flag.Int("evt-min", 0, "lowest event id to process (0 = no lower bound)")
		evtMax    = flag.Int("evt-max", 0, "highest event id to process (0 = no upper bound)")
		task      = flag.Int("task", 0, "task index for distributed runs")
		nTasks    = flag.Int("n-tasks", 1, "number of parallel tasks the event list is split across")
		workers   = flag.Int("workers", 8, "concurrent event workers")
		moduleMap = flag.String("module-map", "", "path to module adjacency map JSON (omit to disable)")

		ptMin       = flag.Float64("pt-min", 2, "transverse momentum cut in GeV")
		phiSlopeMax = flag.Float64("phi-slope-max", 0.0006, "phi slope edge cut")
		z0Max       = flag.Float64("z0-max", 15000, "z0 edge cut in mm")
		nPhi        = flag.Int("n-phi", 8, "number of phi sectors")
		nEta        = flag.Int("n-eta", 2, "number of eta sectors")
		etaMin      = flag.Float64("eta-min", -5, "lower eta bound")
		etaMax      = flag.Float64("eta-max", 5, "upper eta bound")
		endcaps     = flag.Bool("endcaps", true, "include endcap layers and transition pairs")
		keepNoise   = flag.Bool("keep-noise", false, "keep noise hits (particle id 0)")
		keepDups    = flag.Bool("keep-duplicates", false, "keep duplicate hits per (particle, layer)")

		neo4jURL    = flag.String("neo4j", "", "Neo4j bolt URL (omit to skip graph sink)")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "", "Neo4j password")
		qdrantAddr  = flag.String("qdrant", "", "Qdrant gRPC address (omit to skip feature sink)")
		collection  = flag.String("collection", "trackgraph", "Qdrant collection name")
		natsURL     = flag.String("nats", "", "NATS URL for summary publication (omit to skip)")
		natsSubject = flag.String("subject", "trackgraph.summaries", "NATS subject for event summaries")
		metricsPort = flag.Int("metrics-port", 9090, "Prometheus metrics port (0 to disable)")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if *dataDir == "" {
		log.Error("missing required -dir flag")
		os.Exit(2)
	}

	if *metricsPort > 0 {
		serveMetrics(*metricsPort, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := domain.Config{
		PtMin:            *ptMin,
		PhiSlopeMax:      *phiSlopeMax,
		Z0Max:            *z0Max,
		NPhiSectors:      *nPhi,
		NEtaSectors:      *nEta,
		EtaRange:         [2]float64{*etaMin, *etaMax},
		Endcaps:          *endcaps,
		RemoveNoise:      !*keepNoise,
		RemoveDuplicates: !*keepDups,
	}

	var maps detector.ModuleMaps
	if *moduleMap != "" {
		var err error
		maps, err = detector.LoadModuleMaps(*moduleMap)
		if err != nil {
			log.Error("load module maps failed", "path", *moduleMap, "error", err)
			os.Exit(1)
		}
		log.Info("module adjacency mask enabled", "path", *moduleMap, "pairs", len(maps))
	}

	builder, err := process.NewBuilder(cfg, maps, log)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	refs, err := dataset.Discover(*dataDir)
	if err != nil {
		log.Error("discover events failed", "dir", *dataDir, "error", err)
		os.Exit(1)
	}
	refs = dataset.FilterRange(refs, *evtMin, *evtMax)
	refs, err = dataset.TaskChunk(refs, *task, *nTasks)
	if err != nil {
		log.Error("task split failed", "error", err)
		os.Exit(2)
	}
	if len(refs) == 0 {
		log.Warn("no events to process", "dir", *dataDir)
		return
	}
	log.Info("processing events", "n", len(refs), "task", *task, "workers", *workers)

	// Optional sinks.
	var gs *graphstore.Store
	if *neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
		if err != nil {
			log.Error("neo4j connect failed", "error", err)
			os.Exit(1)
		}
		defer driver.Close(ctx)
		if err := driver.VerifyConnectivity(ctx); err != nil {
			log.Error("neo4j verify failed", "error", err)
			os.Exit(1)
		}
		gs = graphstore.New(driver, graphstore.Opts{Logger: log})
		log.Info("connected to Neo4j")
	}

	var fs *featurestore.Store
	if *qdrantAddr != "" {
		fs, err = featurestore.New(*qdrantAddr, *collection)
		if err != nil {
			log.Error("qdrant connect failed", "error", err)
			os.Exit(1)
		}
		defer fs.Close()
		if err := fs.EnsureCollection(ctx); err != nil {
			log.Error("qdrant ensure collection failed", "error", err)
			os.Exit(1)
		}
		log.Info("connected to Qdrant", "collection", *collection)
	}

	var nc *nats.Conn
	if *natsURL != "" {
		nc, err = nats.Connect(*natsURL, nats.Name("trackgraph-build"))
		if err != nil {
			log.Error("nats connect failed", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		log.Info("connected to NATS", "subject", *natsSubject)
	}

	start := time.Now()
	results, err := builder.ProcessBatch(ctx, dataset.FileLoader{}, refs, *workers)
	if err != nil {
		mEventsFailed.Inc()
		log.Error("batch processing failed", "error", err)
		os.Exit(1)
	}
	mBatchDur.Since(start)

	summaries := make([]summary.Summary, 0, len(results))
	for _, res := range results {
		mEventsTotal.Inc()
		mGraphsTotal.Add(int64(len(res.Graphs)))
		mNodesTotal.Add(int64(res.Summary.NNodes))
		mEdgesTotal.Add(int64(res.Summary.NEdges))
		summaries = append(summaries, res.Summary)

		if *outDir != "" {
			if err := writeGraphs(*outDir, res); err != nil {
				log.Error("write graphs failed", "evtid", res.EvtID, "error", err)
				os.Exit(1)
			}
		}
		if gs != nil {
			if err := saveToNeo4j(ctx, gs, res); err != nil {
				log.Error("neo4j write failed", "evtid", res.EvtID, "error", err)
				os.Exit(1)
			}
		}
		if fs != nil {
			if err := saveToQdrant(ctx, fs, res); err != nil {
				log.Error("qdrant write failed", "evtid", res.EvtID, "error", err)
				os.Exit(1)
			}
		}
		if nc != nil {
			if err := natsutil.Publish(ctx, nc, *natsSubject, res.Summary); err != nil {
				log.Error("summary publish failed", "evtid", res.EvtID, "error", err)
			}
		}
	}

	stats := summary.Aggregate(summaries)
	log.Info("batch complete",
		"events", len(summaries),
		"elapsed", time.Since(start),
		"nodes_mean", stats.NNodes.Mean,
		"edges_mean", stats.NEdges.Mean,
		"purity", stats.Purity.Mean,
		"efficiency", stats.Efficiency.Mean,
		"boundary_fraction", stats.BoundaryFraction.Mean,
	)
	for _, sec := range summary.AggregateSectors(summaries) {
		log.Info("sector stats",
			"eta", sec.S.Eta,
			"phi", sec.S.Phi,
			"nodes_mean", sec.NNodes.Mean,
			"edges_mean", sec.NEdges.Mean,
			"purity", sec.Purity.Mean,
		)
	}
}

// serveMetrics exposes /metrics in the background with the standard
// middleware chain.
func serveMetrics(port int, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	h := mid.Chain(mux, mid.Recover(log), mid.OTel("trackgraph-build"), mid.Logger(log))
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), h); err != nil {
			log.Error("metrics server failed", "port", port, "error", err)
		}
	}()
}

// writeGraphs serializes each sector graph of one event to its own file,
// numbered in sector order.
func writeGraphs(dir string, res process.EventResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, g := range res.Graphs {
		name := filepath.Join(dir, fmt.Sprintf("event%09d_g%03d.json", res.EvtID, i))
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal graph %d: %w", i, err)
		}
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func saveToNeo4j(ctx context.Context, gs *graphstore.Store, res process.EventResult) error {
	for _, g := range res.Graphs {
		if err := gs.SaveGraph(ctx, res.EvtID, g); err != nil {
			return err
		}
		mNeo4jWrites.Inc()
	}
	return gs.SaveSummary(ctx, res.Summary)
}

func saveToQdrant(ctx context.Context, fs *featurestore.Store, res process.EventResult) error {
	for _, g := range res.Graphs {
		records := featurestore.GraphRecords(res.EvtID, g, res.SectorHits[g.S])
		if err := fs.Upsert(ctx, records); err != nil {
			return err
		}
		mQdrantWrites.Inc()
	}
	return nil
}
