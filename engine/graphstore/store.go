// Package graphstore persists sector graph records and event summaries to
// Neo4j for downstream inspection. It is an optional sink; the in-memory
// graph records are the pipeline's primary output.
package graphstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/exatrkx/trackgraph/engine/graph"
	"github.com/exatrkx/trackgraph/engine/summary"
	"github.com/exatrkx/trackgraph/pkg/fn"
	"github.com/exatrkx/trackgraph/pkg/repo"
	"github.com/exatrkx/trackgraph/pkg/resilience"
)

// Store writes graph records to Neo4j. Writes are rate limited and guarded
// by a circuit breaker so a struggling database degrades the sink, not the
// pipeline.
type Store struct {
	driver    neo4j.DriverWithContext
	summaries *repo.Neo4jRepo[summary.Summary, string]
	limiter   *rate.Limiter
	breaker   *resilience.Breaker
	retry     fn.RetryOpts
	log       *slog.Logger
}

// Opts configures the store.
type Opts struct {
	// WritesPerSecond caps sector-graph writes; zero means unlimited.
	WritesPerSecond float64
	Breaker         resilience.BreakerOpts
	Retry           fn.RetryOpts
	Logger          *slog.Logger
}

// New creates a Store over an open Neo4j driver.
func New(driver neo4j.DriverWithContext, opts Opts) *Store {
	limit := rate.Inf
	if opts.WritesPerSecond > 0 {
		limit = rate.Limit(opts.WritesPerSecond)
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = fn.DefaultRetry
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		driver:    driver,
		summaries: newSummaryRepo(driver),
		limiter:   rate.NewLimiter(limit, 1),
		breaker:   resilience.NewBreaker(opts.Breaker),
		retry:     opts.Retry,
		log:       log,
	}
}

// SaveGraph upserts one sector graph: a SectorGraph node, one Hit node per
// graph node, and a SEGMENT relationship per edge. Node identifiers are
// positional within the sector, prefixed by event and sector, since edge
// indices are positional by construction.
func (s *Store) SaveGraph(ctx context.Context, evtid int, g graph.Graph) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("graphstore: rate limit: %w", err)
	}

	gid := graphID(evtid, g)
	nodes := make([]map[string]any, len(g.X))
	for i, x := range g.X {
		nodes[i] = map[string]any{
			"id":  fmt.Sprintf("%s-n%d", gid, i),
			"r":   float64(x[0]),
			"phi": float64(x[1]),
			"z":   float64(x[2]),
		}
	}
	edges := make([]map[string]any, g.NumEdges())
	for k := range edges {
		edges[k] = map[string]any{
			"src":  fmt.Sprintf("%s-n%d", gid, g.EdgeIndex[0][k]),
			"dst":  fmt.Sprintf("%s-n%d", gid, g.EdgeIndex[1][k]),
			"dr":   g.EdgeAttr[0][k],
			"dphi": g.EdgeAttr[1][k],
			"dz":   g.EdgeAttr[2][k],
			"drr":  g.EdgeAttr[3][k],
			"y":    int(g.Y[k]),
		}
	}

	result := fn.Retry(ctx, s.retry, func(ctx context.Context) fn.Result[struct{}] {
		err := s.breaker.Call(ctx, func(ctx context.Context) error {
			return s.writeGraph(ctx, gid, evtid, g, nodes, edges)
		})
		return fn.FromPair(struct{}{}, err)
	})
	if _, err := result.Unwrap(); err != nil {
		return fmt.Errorf("graphstore: save graph %s: %w", gid, err)
	}
	s.log.Debug("sector graph saved", "graph", gid, "nodes", len(nodes), "edges", len(edges))
	return nil
}

func (s *Store) writeGraph(ctx context.Context, gid string, evtid int, g graph.Graph, nodes, edges []map[string]any) error {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	if _, err := sess.Run(ctx, `
		MERGE (sg:SectorGraph {id: $id})
		SET sg.evtid = $evtid, sg.eta_sector = $eta, sg.phi_sector = $phi,
		    sg.n_nodes = $nodes, sg.n_edges = $edges, sg.n_incorrect = $incorrect`,
		map[string]any{
			"id": gid, "evtid": evtid, "eta": g.S.Eta, "phi": g.S.Phi,
			"nodes": g.NumNodes(), "edges": g.NumEdges(), "incorrect": g.NIncorrect,
		}); err != nil {
		return err
	}
	if _, err := sess.Run(ctx, `
		MATCH (sg:SectorGraph {id: $gid})
		UNWIND $nodes AS n
		MERGE (h:Hit {id: n.id})
		SET h.r = n.r, h.phi = n.phi, h.z = n.z
		MERGE (sg)-[:CONTAINS]->(h)`,
		map[string]any{"gid": gid, "nodes": nodes}); err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}
	_, err := sess.Run(ctx, `
		UNWIND $edges AS e
		MATCH (a:Hit {id: e.src}), (b:Hit {id: e.dst})
		MERGE (a)-[r:SEGMENT]->(b)
		SET r.dr = e.dr, r.dphi = e.dphi, r.dz = e.dz, r.dR = e.drr, r.y = e.y`,
		map[string]any{"edges": edges})
	return err
}

// SaveSummary upserts one event's summary record.
func (s *Store) SaveSummary(ctx context.Context, sum summary.Summary) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("graphstore: rate limit: %w", err)
	}
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.summaries.Put(ctx, sum)
	})
	if err != nil {
		return fmt.Errorf("graphstore: save summary evt %d: %w", sum.EvtID, err)
	}
	return nil
}

func graphID(evtid int, g graph.Graph) string {
	return fmt.Sprintf("evt%d-e%d-p%d", evtid, g.S.Eta, g.S.Phi)
}
