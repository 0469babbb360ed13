package output

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/zonograph/internal/pipeline"
	"github.com/MeKo-Tech/zonograph/internal/zone"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// sqliteBatchSize is the number of zones inserted per transaction.
	sqliteBatchSize = 500
)

// writeSQLite stores the catalog in a SQLite database: one row per
// zone holding its JSON document plus indexed lookup columns, and a
// metadata table with the build statistics.
func writeSQLite(cosmogony *pipeline.Cosmogony, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() // nolint:errcheck

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createCatalogSchema(db); err != nil {
		return err
	}
	if err := insertCatalogMetadata(db, cosmogony.Meta); err != nil {
		return err
	}

	for start := 0; start < len(cosmogony.Zones); start += sqliteBatchSize {
		end := start + sqliteBatchSize
		if end > len(cosmogony.Zones) {
			end = len(cosmogony.Zones)
		}
		if err := insertZoneBatch(db, cosmogony.Zones[start:end]); err != nil {
			return err
		}
	}
	return db.Close()
}

func createCatalogSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS zones (
			osm_id TEXT PRIMARY KEY,
			zone_type TEXT NOT NULL,
			name TEXT NOT NULL,
			document TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS zone_type_index ON zones (zone_type);
		CREATE INDEX IF NOT EXISTS zone_name_index ON zones (name);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func insertCatalogMetadata(db *sql.DB, meta pipeline.Metadata) error {
	if _, err := db.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stats, err := json.Marshal(meta.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	entries := map[string]string{
		"osm_filename": meta.OSMFilename,
		"stats":        string(stats),
	}
	stmt, err := db.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for name, value := range entries {
		if _, err := stmt.Exec(name, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", name, err)
		}
	}
	return nil
}

func insertZoneBatch(db *sql.DB, zones []zone.Zone) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO zones (osm_id, zone_type, name, document) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for i := range zones {
		document, err := json.Marshal(&zones[i])
		if err != nil {
			return fmt.Errorf("failed to marshal zone %s: %w", zones[i].OSMID, err)
		}
		if _, err := stmt.Exec(zones[i].OSMID, zones[i].Type.String(), zones[i].Name, string(document)); err != nil {
			return fmt.Errorf("failed to insert zone %s: %w", zones[i].OSMID, err)
		}
	}
	return tx.Commit()
}
