package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/storage"
	"github.com/rs/zerolog"
)

// loadWorks reads the work graph into memory. A missing file is an empty
// graph, so the first ingest can create it.
func loadWorks(ctx context.Context, path string, log zerolog.Logger) (*storage.Graph, error) {
	g, err := storage.NewMemoryGraph()
	if err != nil {
		return nil, err
	}
	n, err := g.LoadTurtleFile(ctx, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info().Str("path", path).Msg("work graph not found, starting empty")
	case err != nil:
		g.Close()
		return nil, err
	default:
		log.Debug().Str("path", path).Int("triples", n).Msg("work graph loaded")
	}
	return g, nil
}
