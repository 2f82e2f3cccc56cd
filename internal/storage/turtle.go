package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
)

// LoadTurtle parses a Turtle document and adds its triples to the graph. The
// document's prefixes are kept for serialization.
func (g *Graph) LoadTurtle(ctx context.Context, r io.Reader) (int, error) {
	doc, err := graph.ReadTurtle(r)
	if err != nil {
		return 0, err
	}
	for name, ns := range doc.Prefixes {
		g.prefixes[name] = ns
	}
	return g.Add(ctx, doc.Triples...)
}

// LoadTurtleFile loads a Turtle file. A missing file returns an error that
// satisfies errors.Is(err, fs.ErrNotExist) so callers can treat it as empty.
func (g *Graph) LoadTurtleFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := g.LoadTurtle(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", path, err)
	}
	return n, nil
}

// WriteTurtle serializes the whole graph.
func (g *Graph) WriteTurtle(ctx context.Context, w io.Writer) error {
	triples, err := g.Triples(ctx)
	if err != nil {
		return err
	}
	return graph.NewTurtleWriter(g.Prefixes()).Write(w, triples)
}

// WriteTurtleFile replaces path with the serialized graph. The document is
// written to a temporary file in the same directory and renamed into place,
// so readers never see a partial file.
func (g *Graph) WriteTurtleFile(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := g.WriteTurtle(ctx, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
