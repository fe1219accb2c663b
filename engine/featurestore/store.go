// Package featurestore persists scaled node feature vectors in Qdrant so
// that built graphs can be inspected with nearest-neighbour queries, e.g.
// "which hits in this region look like this one".
package featurestore

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/engine/graph"
)

// FeatureDims is the width of a node feature vector: scaled (r, phi, z).
const FeatureDims = 3

// NodeRecord is a single hit feature vector plus the payload needed to
// trace it back to its event and sector.
type NodeRecord struct {
	ID      uint64
	Vector  [FeatureDims]float32
	Payload map[string]any // evtid, eta_sector, phi_sector, layer, particle
}

// NodeMatch is a single similarity search hit.
type NodeMatch struct {
	ID       uint64
	Score    float32
	EvtID    int64
	Layer    int
	Particle int64
}

// Store is the sole owner of all Qdrant operations.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a Store connected to Qdrant at the given gRPC address.
func New(addr string, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("featurestore: dial qdrant %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (s *Store) EnsureCollection(ctx context.Context) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("featurestore: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     FeatureDims,
					Distance: pb.Distance_Euclid,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("featurestore: create collection %s: %w", s.collection, err)
	}
	return nil
}

// DeleteCollection deletes the collection.
func (s *Store) DeleteCollection(ctx context.Context) error {
	_, err := s.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("featurestore: delete collection %s: %w", s.collection, err)
	}
	return nil
}

// GraphRecords flattens a sector graph into upsertable node records. hits
// must be the sector hit list the graph was built from, in node order.
// Point IDs are derived from the event id and node position so re-running
// an event overwrites its previous points instead of duplicating them.
func GraphRecords(evtid int, g graph.Graph, hits []domain.Hit) []NodeRecord {
	records := make([]NodeRecord, g.NumNodes())
	for i := range records {
		payload := map[string]any{
			"evtid":      int64(evtid),
			"eta_sector": int64(g.S.Eta),
			"phi_sector": int64(g.S.Phi),
		}
		if i < len(hits) {
			payload["layer"] = int64(hits[i].Layer)
			payload["particle"] = int64(hits[i].ParticleID)
		}
		records[i] = NodeRecord{
			ID:      pointID(evtid, g, i),
			Vector:  g.X[i],
			Payload: payload,
		}
	}
	return records
}

// Upsert stores node feature records into Qdrant.
func (s *Store) Upsert(ctx context.Context, records []NodeRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		payload := make(map[string]*pb.Value, len(r.Payload))
		for k, val := range r.Payload {
			switch tv := val.(type) {
			case string:
				payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: tv}}
			case int:
				payload[k] = &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(tv)}}
			case int64:
				payload[k] = &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: tv}}
			case float64:
				payload[k] = &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: tv}}
			case bool:
				payload[k] = &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: tv}}
			default:
				payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: fmt.Sprint(tv)}}
			}
		}

		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Num{Num: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Vector[:]},
				},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("featurestore: upsert %d points: %w", len(records), err)
	}
	return nil
}

// DeleteEvent removes all points for an event. Used before re-building it.
func (s *Store) DeleteEvent(ctx context.Context, evtid int64) error {
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{
						intMatch("evtid", evtid),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("featurestore: delete event %d: %w", evtid, err)
	}
	return nil
}

// SearchNear performs k-NN similarity search over stored node features.
func (s *Store) SearchNear(ctx context.Context, vector [FeatureDims]float32, topK int) ([]NodeMatch, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector[:],
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("featurestore: search: %w", err)
	}

	results := make([]NodeMatch, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		m := NodeMatch{
			ID:    r.GetId().GetNum(),
			Score: r.GetScore(),
		}
		for k, val := range r.GetPayload() {
			switch k {
			case "evtid":
				m.EvtID = val.GetIntegerValue()
			case "layer":
				m.Layer = int(val.GetIntegerValue())
			case "particle":
				m.Particle = val.GetIntegerValue()
			}
		}
		results[i] = m
	}
	return results, nil
}

// pointID packs event, sector and node index into a stable 64-bit id.
func pointID(evtid int, g graph.Graph, node int) uint64 {
	return uint64(evtid)<<24 | uint64(g.S.Eta&0xf)<<20 | uint64(g.S.Phi&0xf)<<16 | uint64(node&0xffff)
}

func intMatch(key string, value int64) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Integer{Integer: value},
				},
			},
		},
	}
}
