// Package mb provides API for reading and writing tile pyramids in MBTiles format.
//
// Levels are stored in zoom_level as pyramid levels (0 is full resolution) and rows
// are counted from the top of the image, so no TMS flip is applied.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package mb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eak1mov/go-tileview/tile"
)

var ErrMissingMetadata = errors.New("tileview: missing mbtiles metadata")

// Reader implements tile.Reader interface for MBTiles format.
type Reader struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewReader creates a new Reader for the given MBTiles file path.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Reader{db: db, stmt: stmt}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata() (Metadata, error) {
	metadata := make(Metadata)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

// ReadGrid returns the pyramid geometry and tile format stored in the metadata table.
func (r *Reader) ReadGrid() (tile.Grid, string, error) {
	metadata, err := r.ReadMetadata()
	if err != nil {
		return tile.Grid{}, "", err
	}
	return metadata.Grid()
}

func (r *Reader) ReadTile(ctx context.Context, tileID tile.ID) ([]byte, error) {
	var tileData []byte
	err := r.stmt.QueryRowContext(ctx, tileID.Z, tileID.X, tileID.Y).Scan(&tileData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", tile.ErrNotFound, tileID)
	}
	if err != nil {
		return nil, err
	}
	return tileData, nil
}
