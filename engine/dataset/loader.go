// Package dataset discovers and loads TrackML-style event files: one CSV
// triple (hits, particles, truth) per event, keyed by the numeric suffix of
// the shared file prefix.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/pkg/fn"
)

const hitsSuffix = "-hits.csv"

// Discover lists the event references in a dataset directory, sorted by
// prefix. The event id is parsed from the trailing nine digits of the
// prefix.
func Discover(dir string) ([]domain.EventRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: read dir %s: %w", dir, err)
	}

	var refs []domain.EventRef
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, hitsSuffix) {
			continue
		}
		prefix := filepath.Join(dir, strings.TrimSuffix(name, hitsSuffix))
		id, err := EventID(prefix)
		if err != nil {
			return nil, err
		}
		refs = append(refs, domain.EventRef{ID: id, Prefix: prefix})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Prefix < refs[j].Prefix })
	return refs, nil
}

// EventID parses the event id from the trailing nine digits of a file
// prefix.
func EventID(prefix string) (int, error) {
	if len(prefix) < 9 {
		return 0, fmt.Errorf("dataset: prefix %q too short for an event id", prefix)
	}
	id, err := strconv.Atoi(prefix[len(prefix)-9:])
	if err != nil {
		return 0, fmt.Errorf("dataset: parse event id from %q: %w", prefix, err)
	}
	return id, nil
}

// FilterRange keeps references whose event id falls in [lo, hi]. A hi of
// zero or below means no upper bound.
func FilterRange(refs []domain.EventRef, lo, hi int) []domain.EventRef {
	return fn.Filter(refs, func(r domain.EventRef) bool {
		return r.ID >= lo && (hi <= 0 || r.ID <= hi)
	})
}

// TaskChunk splits references into nTasks near-equal contiguous chunks and
// returns chunk task, for spreading a dataset over independent jobs.
func TaskChunk(refs []domain.EventRef, task, nTasks int) ([]domain.EventRef, error) {
	if nTasks < 1 || task < 0 || task >= nTasks {
		return nil, fmt.Errorf("dataset: task %d of %d out of range", task, nTasks)
	}
	return fn.SplitN(refs, nTasks)[task], nil
}

// FileLoader loads events from CSV triples on the local filesystem.
type FileLoader struct{}

// LoadEvent reads the hits, particles, and truth tables for one event.
func (FileLoader) LoadEvent(_ context.Context, ref domain.EventRef) (domain.Event, error) {
	ev := domain.Event{ID: ref.ID}

	if err := readTable(ref.Prefix+hitsSuffix, func(row columns) error {
		h, err := parseHit(row)
		if err == nil {
			ev.Hits = append(ev.Hits, h)
		}
		return err
	}); err != nil {
		return domain.Event{}, err
	}
	if err := readTable(ref.Prefix+"-particles.csv", func(row columns) error {
		p, err := parseParticle(row)
		if err == nil {
			ev.Particles = append(ev.Particles, p)
		}
		return err
	}); err != nil {
		return domain.Event{}, err
	}
	if err := readTable(ref.Prefix+"-truth.csv", func(row columns) error {
		t, err := parseTruth(row)
		if err == nil {
			ev.Truth = append(ev.Truth, t)
		}
		return err
	}); err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

// columns resolves values by header name for one CSV row.
type columns struct {
	index map[string]int
	row   []string
}

func (c columns) Int(name string) (int, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return strconv.Atoi(c.row[i])
}

func (c columns) Int64(name string) (int64, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return strconv.ParseInt(c.row[i], 10, 64)
}

func (c columns) Float(name string) (float64, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return strconv.ParseFloat(c.row[i], 64)
}

func readTable(path string, visit func(columns) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("dataset: read header %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("dataset: read %s: %w", path, err)
		}
		line++
		if err := visit(columns{index: index, row: row}); err != nil {
			return fmt.Errorf("dataset: %s line %d: %w", path, line, err)
		}
	}
}

func parseHit(row columns) (domain.RawHit, error) {
	var (
		h   domain.RawHit
		err error
	)
	if h.HitID, err = row.Int("hit_id"); err != nil {
		return h, err
	}
	if h.X, err = row.Float("x"); err != nil {
		return h, err
	}
	if h.Y, err = row.Float("y"); err != nil {
		return h, err
	}
	if h.Z, err = row.Float("z"); err != nil {
		return h, err
	}
	if h.VolumeID, err = row.Int("volume_id"); err != nil {
		return h, err
	}
	if h.LayerID, err = row.Int("layer_id"); err != nil {
		return h, err
	}
	h.ModuleID, err = row.Int("module_id")
	return h, err
}

func parseParticle(row columns) (domain.RawParticle, error) {
	var (
		p   domain.RawParticle
		err error
	)
	if p.ParticleID, err = row.Int64("particle_id"); err != nil {
		return p, err
	}
	if p.Px, err = row.Float("px"); err != nil {
		return p, err
	}
	if p.Py, err = row.Float("py"); err != nil {
		return p, err
	}
	p.Pz, err = row.Float("pz")
	return p, err
}

func parseTruth(row columns) (domain.TruthRow, error) {
	var (
		t   domain.TruthRow
		err error
	)
	if t.HitID, err = row.Int("hit_id"); err != nil {
		return t, err
	}
	t.ParticleID, err = row.Int64("particle_id")
	return t, err
}
