package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS maps (
    map_key     TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    file_path   TEXT NOT NULL,
    chat        TEXT NOT NULL DEFAULT '',
    session_id  TEXT NOT NULL DEFAULT '',
    messages    INTEGER NOT NULL DEFAULT 0,
    first_at    TEXT NOT NULL DEFAULT '',
    last_at     TEXT NOT NULL DEFAULT '',
    geojson     TEXT NOT NULL DEFAULT '',
    mtime       INTEGER NOT NULL DEFAULT 0,
    size        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS features (
    map_key     TEXT NOT NULL,
    feature_id  INTEGER NOT NULL,
    related     INTEGER NOT NULL DEFAULT -1,
    lat         REAL NOT NULL,
    lon         REAL NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    username    TEXT NOT NULL DEFAULT '',
    kind        TEXT NOT NULL DEFAULT 'text',
    text        TEXT NOT NULL,
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (map_key, feature_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS features_fts USING fts5(
    text,
    content=features,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS features_ai AFTER INSERT ON features BEGIN
    INSERT INTO features_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS features_ad AFTER DELETE ON features BEGIN
    INSERT INTO features_fts(features_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS features_au AFTER UPDATE ON features BEGIN
    INSERT INTO features_fts(features_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO features_fts(rowid, text) VALUES (new.rowid, new.text);
END;
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	// schema version tracking for forced re-index
	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

// schemaVersion should be bumped whenever parsing or pairing changes so
// every export is rebuilt on the next index run.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		d.db.Exec("UPDATE maps SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type MapInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetMapInfo(mapKey string) (*MapInfo, error) {
	var info MapInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM maps WHERE map_key = ?",
		mapKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllMapKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT map_key FROM maps")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteMap(mapKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM features WHERE map_key = ?", mapKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM maps WHERE map_key = ?", mapKey); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) MapCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM maps").Scan(&n)
	return n, err
}

func (d *DB) FeatureCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM features").Scan(&n)
	return n, err
}

type MapRow struct {
	MapKey    string
	Source    string
	FilePath  string
	Chat      string
	SessionID string
	Messages  int
	Features  int
	FirstAt   string
	LastAt    string
}

const mapColumns = `m.map_key, m.source, m.file_path, m.chat, m.session_id, m.messages,
	(SELECT COUNT(*) FROM features f WHERE f.map_key = m.map_key), m.first_at, m.last_at`

func scanMap(row interface{ Scan(...any) error }) (*MapRow, error) {
	var m MapRow
	err := row.Scan(&m.MapKey, &m.Source, &m.FilePath, &m.Chat, &m.SessionID, &m.Messages,
		&m.Features, &m.FirstAt, &m.LastAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *DB) GetMapByKey(mapKey string) (*MapRow, error) {
	m, err := scanMap(d.db.QueryRow(
		"SELECT "+mapColumns+" FROM maps m WHERE m.map_key = ?", mapKey,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// ListMaps returns maps, most recent activity first. An empty source lists
// every app.
func (d *DB) ListMaps(source string, limit int) ([]MapRow, error) {
	query := "SELECT " + mapColumns + " FROM maps m"
	var args []any
	if source != "" {
		query += " WHERE m.source = ?"
		args = append(args, source)
	}
	query += " ORDER BY m.last_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var maps []MapRow
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		maps = append(maps, *m)
	}
	return maps, rows.Err()
}

// MapGeoJSON returns the stored FeatureCollection of a map.
func (d *DB) MapGeoJSON(mapKey string) (string, error) {
	var s string
	err := d.db.QueryRow("SELECT geojson FROM maps WHERE map_key = ?", mapKey).Scan(&s)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("map %s not found", mapKey)
	}
	return s, err
}

type FeatureRow struct {
	MapKey     string
	FeatureID  int
	Related    int // -1 for a location-only point
	Lat        float64
	Lon        float64
	Ts         string
	Username   string
	Kind       string
	Text       string
	LineNumber int
}

const featureColumns = "map_key, feature_id, related, lat, lon, ts, username, kind, text, line_number"

func scanFeatures(rows *sql.Rows) ([]FeatureRow, error) {
	var features []FeatureRow
	for rows.Next() {
		var f FeatureRow
		if err := rows.Scan(&f.MapKey, &f.FeatureID, &f.Related, &f.Lat, &f.Lon,
			&f.Ts, &f.Username, &f.Kind, &f.Text, &f.LineNumber); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

func (d *DB) GetFeatures(mapKey string) ([]FeatureRow, error) {
	rows, err := d.db.Query(
		"SELECT "+featureColumns+" FROM features WHERE map_key = ? ORDER BY feature_id",
		mapKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeatures(rows)
}

// GetFeaturesWindow returns a window of features around a hit feature.
// hitIdx is the hit's position in the returned slice, or -1 when the hit is
// not in the map, in which case every feature is returned.
func (d *DB) GetFeaturesWindow(mapKey string, hitFeatureID, context int) (features []FeatureRow, hitIdx int, err error) {
	var total int
	err = d.db.QueryRow("SELECT COUNT(*) FROM features WHERE map_key = ?", mapKey).Scan(&total)
	if err != nil {
		return nil, -1, err
	}

	// 0-based position of the hit feature
	hitPos := -1
	err = d.db.QueryRow(`
		SELECT pos FROM (
			SELECT feature_id, ROW_NUMBER() OVER (ORDER BY feature_id) - 1 AS pos
			FROM features WHERE map_key = ?
		) WHERE feature_id = ?`,
		mapKey, hitFeatureID,
	).Scan(&hitPos)
	if err != nil && err != sql.ErrNoRows {
		return nil, -1, err
	}

	start, limit := 0, total
	if hitPos >= 0 {
		start = max(hitPos-context, 0)
		limit = min(hitPos+context+1, total) - start
	}

	rows, err := d.db.Query(
		"SELECT "+featureColumns+" FROM features WHERE map_key = ? ORDER BY feature_id LIMIT ? OFFSET ?",
		mapKey, limit, start,
	)
	if err != nil {
		return nil, -1, err
	}
	defer rows.Close()

	features, err = scanFeatures(rows)
	if err != nil {
		return nil, -1, err
	}
	hitIdx = -1
	if hitPos >= 0 {
		hitIdx = hitPos - start
	}
	return features, hitIdx, nil
}
