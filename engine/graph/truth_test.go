package graph

import (
	"testing"

	"github.com/exatrkx/trackgraph/engine/domain"
)

func layeredHit(layer, pid int) domain.Hit {
	return domain.Hit{Layer: layer, ParticleID: pid}
}

func TestCountDuplicateTransitions(t *testing.T) {
	tests := []struct {
		name string
		hits []domain.Hit
		src  []int
		dst  []int
		y    []float32
		want int
	}{
		{
			name: "no transitions",
			hits: []domain.Hit{layeredHit(0, 1), layeredHit(1, 1), layeredHit(2, 1)},
			src:  []int{0, 1},
			dst:  []int{1, 2},
			y:    []float32{1, 1},
			want: 0,
		},
		{
			name: "single transition type",
			hits: []domain.Hit{layeredHit(0, 1), layeredHit(4, 1)},
			src:  []int{0},
			dst:  []int{1},
			y:    []float32{1},
			want: 0,
		},
		{
			// The same particle keeps true edges into the endcap from two
			// different barrel layers: one duplicate.
			name: "two transition types one particle",
			hits: []domain.Hit{layeredHit(0, 1), layeredHit(1, 1), layeredHit(4, 1)},
			src:  []int{0, 1},
			dst:  []int{2, 2},
			y:    []float32{1, 1},
			want: 1,
		},
		{
			// Counted once per particle, not once per extra edge type.
			name: "three transition types one particle",
			hits: []domain.Hit{layeredHit(0, 1), layeredHit(1, 1), layeredHit(2, 1), layeredHit(4, 1)},
			src:  []int{0, 1, 2},
			dst:  []int{3, 3, 3},
			y:    []float32{1, 1, 1},
			want: 1,
		},
		{
			name: "two affected particles",
			hits: []domain.Hit{
				layeredHit(0, 1), layeredHit(1, 1), layeredHit(4, 1),
				layeredHit(0, 2), layeredHit(1, 2), layeredHit(11, 2),
			},
			src:  []int{0, 1, 3, 4},
			dst:  []int{2, 2, 5, 5},
			y:    []float32{1, 1, 1, 1},
			want: 2,
		},
		{
			// False edges never contribute.
			name: "false edges ignored",
			hits: []domain.Hit{layeredHit(0, 1), layeredHit(1, 1), layeredHit(4, 1)},
			src:  []int{0, 1},
			dst:  []int{2, 2},
			y:    []float32{1, 0},
			want: 0,
		},
		{
			// Duplicate edges of the same transition type are one type.
			name: "same type twice",
			hits: []domain.Hit{layeredHit(0, 1), layeredHit(4, 1), layeredHit(4, 1)},
			src:  []int{0, 0},
			dst:  []int{1, 2},
			y:    []float32{1, 1},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := countDuplicateTransitions(tt.hits, tt.src, tt.dst, tt.y)
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}
