// Package store persists frame drawings between runs.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/bezreel/internal/bezier"
)

// tracer writes to trace with key 'bezreel.store'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.store")
}

// ErrMalformed is returned for curve data that cannot be turned back into
// a drawing without guessing.
var ErrMalformed = errors.New("malformed curve data")

// WriteDocument writes a document to a YAML file. The file is replaced
// atomically.
func WriteDocument(doc *Document, path string) error {
	if doc.Version == "" {
		doc.Version = Version
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".curves-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadDocument reads a document from a YAML file. A missing or unreadable
// file yields an empty document. The curve list of the original JSON format,
// [[xs, ys], ...], is accepted as well.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		tracer().Infof("no curve file at %s, starting empty", path)
		return &Document{Version: Version}, nil
	}
	if err != nil {
		tracer().P("file", path).Errorf("cannot read curve file, starting empty: %v", err)
		return &Document{Version: Version}, nil
	}
	doc, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tracer().P("file", path).Infof("loaded %d curves, %d frame records", len(doc.Current), len(doc.Frames))
	return doc, nil
}

func parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(root.Content) == 0 {
		return &Document{Version: Version}, nil
	}
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		return parseLegacy(root.Content[0])
	case yaml.MappingNode:
		doc := &Document{}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if err := doc.validate(); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: unexpected top-level value", ErrMalformed)
	}
}

func parseLegacy(node *yaml.Node) (*Document, error) {
	var pairs [][][]float64
	if err := node.Decode(&pairs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	doc := &Document{Version: Version, Current: make([]CurveRecord, len(pairs))}
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: curve %d has %d coordinate lists", ErrMalformed, i, len(pair))
		}
		doc.Current[i] = CurveRecord{X: pair[0], Y: pair[1]}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// File binds a document to its path. It records frame drawings as they are
// saved and writes the document when the session ends.
type File struct {
	Path string
	Doc  *Document
}

// Open reads the document at path.
func Open(path string) (*File, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Doc: doc}, nil
}

// Drawing returns the drawing to resume editing from.
func (f *File) Drawing() (bezier.Drawing, error) {
	return f.Doc.Drawing()
}

// RecordFrame remembers the drawing frame index was rendered from.
func (f *File) RecordFrame(index int, d bezier.Drawing) error {
	f.Doc.SetFrame(index, d)
	return nil
}

// SaveDrawing stores d as the current drawing and writes the file.
func (f *File) SaveDrawing(d bezier.Drawing) error {
	f.Doc.Current = Encode(d)
	if err := WriteDocument(f.Doc, f.Path); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	tracer().P("file", f.Path).Infof("saved %d curves", len(d))
	return nil
}
