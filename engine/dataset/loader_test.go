package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/exatrkx/trackgraph/engine/domain"
)

// writeEvent writes a minimal CSV triple for one event and returns its prefix.
func writeEvent(t *testing.T, dir string, id int) string {
	t.Helper()
	prefix := filepath.Join(dir, fmt.Sprintf("event%09d", id))
	files := map[string]string{
		"-hits.csv": "hit_id,x,y,z,volume_id,layer_id,module_id\n" +
			"1,32.0,0.5,10.0,8,2,77\n" +
			"2,72.1,1.0,20.0,8,4,78\n",
		"-particles.csv": "particle_id,px,py,pz,q,nhits\n" +
			"4503668346847232,2.5,0.1,1.2,1,8\n",
		"-truth.csv": "hit_id,particle_id\n" +
			"1,4503668346847232\n" +
			"2,0\n",
	}
	for suffix, content := range files {
		if err := os.WriteFile(prefix+suffix, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return prefix
}

func TestDiscoverAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeEvent(t, dir, 1002)
	writeEvent(t, dir, 1000)
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	refs, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(refs))
	}
	if refs[0].ID != 1000 || refs[1].ID != 1002 {
		t.Fatalf("events out of order: %v", refs)
	}

	ev, err := FileLoader{}.LoadEvent(context.Background(), refs[0])
	if err != nil {
		t.Fatalf("LoadEvent: %v", err)
	}
	if ev.ID != 1000 {
		t.Fatalf("event id = %d", ev.ID)
	}
	if len(ev.Hits) != 2 || len(ev.Particles) != 1 || len(ev.Truth) != 2 {
		t.Fatalf("table sizes: %d hits, %d particles, %d truth",
			len(ev.Hits), len(ev.Particles), len(ev.Truth))
	}
	if ev.Hits[0].HitID != 1 || ev.Hits[0].VolumeID != 8 || ev.Hits[0].LayerID != 2 {
		t.Fatalf("hit parsed wrong: %+v", ev.Hits[0])
	}
	if ev.Particles[0].ParticleID != 4503668346847232 {
		t.Fatalf("particle id parsed wrong: %d", ev.Particles[0].ParticleID)
	}
	if ev.Truth[1].ParticleID != 0 {
		t.Fatalf("noise truth row parsed wrong: %+v", ev.Truth[1])
	}
}

func TestLoadEventMissingFile(t *testing.T) {
	dir := t.TempDir()
	prefix := writeEvent(t, dir, 1000)
	if err := os.Remove(prefix + "-truth.csv"); err != nil {
		t.Fatal(err)
	}
	_, err := FileLoader{}.LoadEvent(context.Background(), domain.EventRef{ID: 1000, Prefix: prefix})
	if err == nil {
		t.Fatal("expected error for missing truth file")
	}
}

func TestLoadEventBadColumn(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "event000001000")
	// Header lacks the z column.
	if err := os.WriteFile(prefix+"-hits.csv",
		[]byte("hit_id,x,y,volume_id,layer_id,module_id\n1,1.0,2.0,8,2,7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := FileLoader{}.LoadEvent(context.Background(), domain.EventRef{ID: 1000, Prefix: prefix})
	if err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestEventID(t *testing.T) {
	id, err := EventID("/data/event000021119")
	if err != nil || id != 21119 {
		t.Fatalf("EventID = %d, %v", id, err)
	}
	if _, err := EventID("/data/event-x"); err == nil {
		t.Fatal("expected error for non-numeric suffix")
	}
}

func TestFilterRange(t *testing.T) {
	refs := []domain.EventRef{{ID: 10}, {ID: 20}, {ID: 30}}
	if got := FilterRange(refs, 15, 25); len(got) != 1 || got[0].ID != 20 {
		t.Fatalf("FilterRange(15, 25) = %v", got)
	}
	if got := FilterRange(refs, 0, 0); len(got) != 3 {
		t.Fatalf("zero bounds must keep everything, got %v", got)
	}
	if got := FilterRange(refs, 25, 0); len(got) != 1 || got[0].ID != 30 {
		t.Fatalf("open upper bound wrong: %v", got)
	}
}

func TestTaskChunk(t *testing.T) {
	refs := []domain.EventRef{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}

	total := 0
	for task := 0; task < 2; task++ {
		chunk, err := TaskChunk(refs, task, 2)
		if err != nil {
			t.Fatal(err)
		}
		total += len(chunk)
	}
	if total != len(refs) {
		t.Fatalf("chunks cover %d of %d refs", total, len(refs))
	}

	if _, err := TaskChunk(refs, 2, 2); err == nil {
		t.Fatal("expected error for out-of-range task")
	}
	if _, err := TaskChunk(refs, 0, 0); err == nil {
		t.Fatal("expected error for zero tasks")
	}
}
