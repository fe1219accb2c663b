package graphstore

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/exatrkx/trackgraph/engine/summary"
	"github.com/exatrkx/trackgraph/pkg/repo"
)

// newSummaryRepo maps event summaries onto EventSummary nodes. Per-sector
// stats stay with the graph records; only event-level aggregates persist
// here.
func newSummaryRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[summary.Summary, string] {
	return repo.NewNeo4jRepo[summary.Summary, string](
		driver, "EventSummary", "id", summaryToMap, summaryFromRecord,
	)
}

func summaryToMap(s summary.Summary) map[string]any {
	return map[string]any{
		"id":                fmt.Sprintf("evt%d", s.EvtID),
		"evtid":             s.EvtID,
		"n_nodes":           s.NNodes,
		"n_edges":           s.NEdges,
		"n_true":            s.NTrue,
		"n_false":           s.NFalse,
		"efficiency":        s.Efficiency,
		"purity":            s.Purity,
		"boundary_fraction": s.BoundaryFraction,
	}
}

func summaryFromRecord(rec *neo4j.Record) (summary.Summary, error) {
	var s summary.Summary
	raw, ok := rec.Get("n")
	if !ok {
		return s, fmt.Errorf("graphstore: record missing node")
	}
	node, ok := raw.(dbtype.Node)
	if !ok {
		return s, fmt.Errorf("graphstore: unexpected record type %T", raw)
	}
	props := node.Props
	s.EvtID = intProp(props, "evtid")
	s.NNodes = intProp(props, "n_nodes")
	s.NEdges = intProp(props, "n_edges")
	s.NTrue = intProp(props, "n_true")
	s.NFalse = intProp(props, "n_false")
	s.Efficiency = floatProp(props, "efficiency")
	s.Purity = floatProp(props, "purity")
	s.BoundaryFraction = floatProp(props, "boundary_fraction")
	return s, nil
}

func intProp(props map[string]any, key string) int {
	if v, ok := props[key].(int64); ok {
		return int(v)
	}
	return 0
}

func floatProp(props map[string]any, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}
