package mb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/eak1mov/go-tileview/tile"
)

// DefaultBatchSize is the number of tiles inserted per transaction.
const DefaultBatchSize = 500

const schema = `
	CREATE TABLE metadata (name TEXT PRIMARY KEY, value TEXT);
	CREATE TABLE tiles (
		zoom_level INTEGER,
		tile_column INTEGER,
		tile_row INTEGER,
		tile_data BLOB
	);
	CREATE UNIQUE INDEX tile_index ON tiles (zoom_level, tile_column, tile_row);
`

// Writer implements tile.Writer interface for MBTiles format.
//
// Tiles are inserted in batched transactions; a tile written twice keeps the
// last data. Metadata is stored by Finalize. Writer is not safe for concurrent use.
type Writer struct {
	db       *sql.DB
	metadata Metadata
	logger   *slog.Logger

	batchSize int
	tx        *sql.Tx
	insert    *sql.Stmt
	batched   int
	written   int
}

type writerConfig struct {
	metadata  Metadata
	batchSize int
	logger    *slog.Logger
}

type WriterOption func(*writerConfig)

// WithMetadata adds entries to the metadata table.
func WithMetadata(metadata map[string]string) WriterOption {
	return func(c *writerConfig) { maps.Copy(c.metadata, metadata) }
}

// WithGrid records the pyramid geometry and tile format in the metadata table.
func WithGrid(grid tile.Grid, format string) WriterOption {
	return func(c *writerConfig) { c.metadata.SetGrid(grid, format) }
}

func WithBatchSize(n int) WriterOption {
	return func(c *writerConfig) { c.batchSize = n }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.logger = logger }
}

// NewWriter creates a new MBTiles file with an empty tile table.
func NewWriter(filePath string, opts ...WriterOption) (*Writer, error) {
	config := writerConfig{
		metadata:  make(Metadata),
		batchSize: DefaultBatchSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("mbtiles schema: %w", err)
	}

	return &Writer{
		db:        db,
		metadata:  config.metadata,
		logger:    config.logger,
		batchSize: max(config.batchSize, 1),
	}, nil
}

// SetMetadata sets a metadata entry to be stored by Finalize.
func (w *Writer) SetMetadata(key, value string) {
	w.metadata[key] = value
}

func (w *Writer) WriteTile(tileID tile.ID, tileData []byte) error {
	if w.tx == nil {
		if err := w.begin(); err != nil {
			return err
		}
	}
	if _, err := w.insert.Exec(tileID.Z, tileID.X, tileID.Y, tileData); err != nil {
		return fmt.Errorf("mbtiles insert %v: %w", tileID, err)
	}
	w.batched++
	w.written++
	if w.batched >= w.batchSize {
		return w.commit()
	}
	return nil
}

func (w *Writer) begin() error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	insert, err := tx.Prepare("INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)")
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	w.tx, w.insert = tx, insert
	return nil
}

func (w *Writer) commit() error {
	tx := w.tx
	w.tx, w.batched = nil, 0
	if err := w.insert.Close(); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// Finalize commits the pending batch and stores the metadata.
func (w *Writer) Finalize() error {
	if w.tx != nil {
		if err := w.commit(); err != nil {
			return err
		}
	}

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	for key, value := range w.metadata {
		if _, err := tx.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)", key, value); err != nil {
			return errors.Join(err, tx.Rollback())
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	w.logger.Debug("tileview: mbtiles finalized", "tiles", w.written, "metadata", len(w.metadata))
	return nil
}

// Close discards tiles written after the last Finalize or full batch.
func (w *Writer) Close() error {
	var err error
	if w.tx != nil {
		err = errors.Join(w.insert.Close(), w.tx.Rollback())
		w.tx = nil
	}
	return errors.Join(err, w.db.Close())
}
