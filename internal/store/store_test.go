package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/ivlev/bezreel/internal/bezier"
)

func sample() bezier.Drawing {
	return bezier.Drawing{
		{{X: 0.5, Y: 1.25}, {X: 800, Y: 999.999}, {X: 1600, Y: 0}},
		{{X: 3, Y: 4}, {X: 3, Y: 4}},
		{{X: 10, Y: 20}, {X: 30, Y: 40}, {X: 50, Y: 60}, {X: 0.1, Y: 0.2}},
	}
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	path := filepath.Join(t.TempDir(), "animation", "curves.yaml")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := f.RecordFrame(1, sample()[:1]); err != nil {
		t.Fatalf("RecordFrame failed: %v", err)
	}
	if err := f.SaveDrawing(sample()); err != nil {
		t.Fatalf("SaveDrawing failed: %v", err)
	}

	reread, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reread.Drawing()
	if err != nil {
		t.Fatalf("Drawing failed: %v", err)
	}
	if d := cmp.Diff(sample(), got); d != "" {
		t.Errorf("drawing mismatch (-want +got):\n%s", d)
	}
	frame, ok, err := reread.Doc.Frame(1)
	if err != nil || !ok {
		t.Fatalf("expected frame 1 record, got ok=%v err=%v", ok, err)
	}
	if d := cmp.Diff(sample()[:1], frame); d != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", d)
	}
	if reread.Doc.Version != Version {
		t.Errorf("expected version %s, got %s", Version, reread.Doc.Version)
	}
}

func TestMissingFileIsEmpty(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f, err := Open(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	d, err := f.Drawing()
	if err != nil || len(d) != 0 {
		t.Errorf("expected empty drawing, got %v, %v", d, err)
	}
}

func TestLegacyJSON(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	path := filepath.Join(t.TempDir(), "saved_curves.json")
	data := `[[[100.5, 200, 300], [10, 20, 30]], [[1, 2], [3, 4]]]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got, err := f.Drawing()
	if err != nil {
		t.Fatalf("Drawing failed: %v", err)
	}
	want := bezier.Drawing{
		{{X: 100.5, Y: 10}, {X: 200, Y: 20}, {X: 300, Y: 30}},
		{{X: 1, Y: 3}, {X: 2, Y: 4}},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("legacy mismatch (-want +got):\n%s", d)
	}
}

func TestMalformed(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cases := map[string]string{
		"mismatched lengths": "version: \"1.0\"\ncurrent:\n  - x: [1, 2, 3]\n    y: [1, 2]\n",
		"single point":       "current:\n  - x: [1]\n    y: [1]\n",
		"unknown field":      "current: []\nlayers: 3\n",
		"scalar":             "42\n",
		"legacy triple":      "[[[1, 2], [3, 4], [5, 6]]]",
		"legacy mismatch":    "[[[1, 2, 3], [3, 4]]]",
		"duplicate frame":    "current: []\nframes:\n  - index: 1\n    curves: []\n  - index: 1\n    curves: []\n",
		"bad frame curve":    "current: []\nframes:\n  - index: 2\n    curves:\n      - x: [1, 2]\n        y: [1]\n",
		"not yaml":           "current: [\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "curves.yaml")
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Open(path)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestSetFrameReplaces(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	doc := &Document{}
	doc.SetFrame(3, sample())
	doc.SetFrame(3, sample()[1:])
	if len(doc.Frames) != 1 {
		t.Fatalf("expected a single record for frame 3, got %d", len(doc.Frames))
	}
	d, ok, err := doc.Frame(3)
	if err != nil || !ok || len(d) != 2 {
		t.Errorf("expected the replaced drawing, got %v %v %v", d, ok, err)
	}
	if _, ok, _ := doc.Frame(4); ok {
		t.Error("frame 4 was never recorded")
	}
}

func TestEmptyFile(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	path := filepath.Join(t.TempDir(), "curves.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if len(f.Doc.Current) != 0 {
		t.Error("expected no curves")
	}
}

func TestUnreadableFileIsEmpty(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unreadable file must not be an error: %v", err)
	}
	if len(f.Doc.Current) != 0 || len(f.Doc.Frames) != 0 {
		t.Errorf("expected an empty document, got %+v", f.Doc)
	}
}
