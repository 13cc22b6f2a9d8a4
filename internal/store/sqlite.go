package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-narrator/internal/weather"
)

const schema = `
CREATE TABLE IF NOT EXISTS locations (
	city_key    TEXT NOT NULL,
	country_key TEXT NOT NULL,
	city        TEXT NOT NULL,
	country     TEXT NOT NULL,
	PRIMARY KEY (city_key, country_key)
);

CREATE TABLE IF NOT EXISTS personas (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL UNIQUE,
	description  TEXT NOT NULL DEFAULT '',
	avatar_color TEXT NOT NULL DEFAULT '#ff6b6b'
);

CREATE TABLE IF NOT EXISTS bindings (
	city_key     TEXT NOT NULL,
	country_key  TEXT NOT NULL,
	persona_id   INTEGER NOT NULL REFERENCES personas(id),
	narrative    TEXT NOT NULL DEFAULT '',
	last_updated DATETIME,
	active       INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (city_key, country_key, persona_id)
);

CREATE TABLE IF NOT EXISTS snapshots (
	city_key    TEXT NOT NULL,
	country_key TEXT NOT NULL,
	city        TEXT NOT NULL,
	country     TEXT NOT NULL,
	temperature REAL NOT NULL DEFAULT 0,
	feels_like  REAL NOT NULL DEFAULT 0,
	humidity    INTEGER NOT NULL DEFAULT 0,
	pressure    INTEGER NOT NULL DEFAULT 0,
	wind_speed  REAL NOT NULL DEFAULT 0,
	wind_deg    INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	icon        TEXT NOT NULL DEFAULT '',
	clouds      INTEGER NOT NULL DEFAULT 0,
	observed_at DATETIME,
	updated_at  DATETIME,
	PRIMARY KEY (city_key, country_key)
);

CREATE TABLE IF NOT EXISTS job_executions (
	id          TEXT PRIMARY KEY,
	job_name    TEXT NOT NULL,
	started_at  DATETIME,
	finished_at DATETIME,
	status      TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_job_executions_finished ON job_executions(finished_at);
`

// SQLiteStore is the durable implementation of weather.Store, backed by
// a single sqlite file. Its absence or unreadability is a normal
// condition: callers fall back to MemoryStore.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Durable() bool { return true }

func locKeys(loc weather.Location) (string, string) {
	return strings.ToLower(strings.TrimSpace(loc.City)), strings.ToLower(strings.TrimSpace(loc.Country))
}

func (s *SQLiteStore) UpsertLocation(loc weather.Location) error {
	ck, nk := locKeys(loc)
	_, err := s.db.Exec(`
INSERT INTO locations (city_key, country_key, city, country)
VALUES (?, ?, ?, ?)
ON CONFLICT (city_key, country_key) DO UPDATE SET city = excluded.city, country = excluded.country`,
		ck, nk, loc.City, loc.Country)
	return err
}

func (s *SQLiteStore) ActiveLocations() ([]weather.Location, error) {
	rows, err := s.db.Query(`
SELECT DISTINCT l.city, l.country
FROM locations l
JOIN bindings b ON b.city_key = l.city_key AND b.country_key = l.country_key
WHERE b.active = 1
ORDER BY l.city, l.country`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []weather.Location
	for rows.Next() {
		var loc weather.Location
		if err := rows.Scan(&loc.City, &loc.Country); err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

const upsertSnapshotSQL = `
INSERT INTO snapshots (
	city_key, country_key, city, country,
	temperature, feels_like, humidity, pressure,
	wind_speed, wind_deg, description, icon, clouds,
	observed_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (city_key, country_key) DO UPDATE SET
	city        = excluded.city,
	country     = excluded.country,
	temperature = excluded.temperature,
	feels_like  = excluded.feels_like,
	humidity    = excluded.humidity,
	pressure    = excluded.pressure,
	wind_speed  = excluded.wind_speed,
	wind_deg    = excluded.wind_deg,
	description = excluded.description,
	icon        = excluded.icon,
	clouds      = excluded.clouds,
	observed_at = excluded.observed_at,
	updated_at  = excluded.updated_at`

func snapshotArgs(snap weather.WeatherSnapshot) []interface{} {
	ck, nk := locKeys(snap.Location)
	return []interface{}{
		ck, nk, snap.Location.City, snap.Location.Country,
		snap.Temperature, snap.FeelsLike, snap.Humidity, snap.Pressure,
		snap.WindSpeed, snap.WindDeg, snap.Description, snap.Icon, snap.Clouds,
		snap.ObservedAt, snap.UpdatedAt,
	}
}

func (s *SQLiteStore) UpsertSnapshot(snap weather.WeatherSnapshot) error {
	_, err := s.db.Exec(upsertSnapshotSQL, snapshotArgs(snap)...)
	return err
}

func (s *SQLiteStore) GetSnapshot(loc weather.Location) (weather.WeatherSnapshot, error) {
	ck, nk := locKeys(loc)
	var snap weather.WeatherSnapshot
	err := s.db.QueryRow(`
SELECT city, country, temperature, feels_like, humidity, pressure,
       wind_speed, wind_deg, description, icon, clouds, observed_at, updated_at
FROM snapshots WHERE city_key = ? AND country_key = ?`, ck, nk).Scan(
		&snap.Location.City, &snap.Location.Country,
		&snap.Temperature, &snap.FeelsLike, &snap.Humidity, &snap.Pressure,
		&snap.WindSpeed, &snap.WindDeg, &snap.Description, &snap.Icon, &snap.Clouds,
		&snap.ObservedAt, &snap.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return snap, err
}

func (s *SQLiteStore) SavePersona(p *weather.Persona) error {
	if p.ID == 0 {
		// LastInsertId is unreliable when the upsert hits the conflict
		// branch; RETURNING yields the row id either way.
		err := s.db.QueryRow(`
INSERT INTO personas (name, description, avatar_color) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET description = excluded.description, avatar_color = excluded.avatar_color
RETURNING id`,
			p.Name, p.Description, p.AvatarColor).Scan(&p.ID)
		return err
	}
	_, err := s.db.Exec(`
UPDATE personas SET name = ?, description = ?, avatar_color = ? WHERE id = ?`,
		p.Name, p.Description, p.AvatarColor, p.ID)
	return err
}

func (s *SQLiteStore) Persona(id int64) (weather.Persona, error) {
	var p weather.Persona
	err := s.db.QueryRow(`SELECT id, name, description, avatar_color FROM personas WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.AvatarColor)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Persona{}, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) PersonaByName(name string) (weather.Persona, error) {
	var p weather.Persona
	err := s.db.QueryRow(`SELECT id, name, description, avatar_color FROM personas WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.Description, &p.AvatarColor)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Persona{}, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) Personas() ([]weather.Persona, error) {
	rows, err := s.db.Query(`SELECT id, name, description, avatar_color FROM personas ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weather.Persona
	for rows.Next() {
		var p weather.Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.AvatarColor); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) EnsureBinding(loc weather.Location, personaID int64) error {
	if err := s.UpsertLocation(loc); err != nil {
		return err
	}
	ck, nk := locKeys(loc)
	// INSERT OR IGNORE keeps existing bindings, including deactivated
	// ones, untouched.
	_, err := s.db.Exec(`
INSERT OR IGNORE INTO bindings (city_key, country_key, persona_id, active) VALUES (?, ?, ?, 1)`,
		ck, nk, personaID)
	return err
}

func (s *SQLiteStore) ActiveBindings(loc weather.Location) ([]weather.Binding, error) {
	ck, nk := locKeys(loc)
	rows, err := s.db.Query(`
SELECT l.city, l.country, b.persona_id, p.name, b.narrative, b.last_updated, b.active
FROM bindings b
JOIN personas p ON p.id = b.persona_id
JOIN locations l ON l.city_key = b.city_key AND l.country_key = b.country_key
WHERE b.city_key = ? AND b.country_key = ? AND b.active = 1
ORDER BY p.id`, ck, nk)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weather.Binding
	for rows.Next() {
		var b weather.Binding
		var active int
		var updated sql.NullTime
		if err := rows.Scan(&b.Location.City, &b.Location.Country, &b.PersonaID, &b.PersonaName,
			&b.Narrative, &updated, &active); err != nil {
			return nil, err
		}
		b.Active = active == 1
		if updated.Valid {
			b.LastUpdated = updated.Time
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SetBindingActive(loc weather.Location, personaID int64, active bool) error {
	ck, nk := locKeys(loc)
	val := 0
	if active {
		val = 1
	}
	res, err := s.db.Exec(`
UPDATE bindings SET active = ? WHERE city_key = ? AND country_key = ? AND persona_id = ?`,
		val, ck, nk, personaID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyRefresh writes the snapshot and narrative updates in one
// transaction so concurrent readers never observe an interleaving.
func (s *SQLiteStore) ApplyRefresh(snap weather.WeatherSnapshot, narratives []weather.NarrativeUpdate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	ck, nk := locKeys(snap.Location)
	if _, err := tx.Exec(`
INSERT INTO locations (city_key, country_key, city, country) VALUES (?, ?, ?, ?)
ON CONFLICT (city_key, country_key) DO NOTHING`, ck, nk, snap.Location.City, snap.Location.Country); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(upsertSnapshotSQL, snapshotArgs(snap)...); err != nil {
		tx.Rollback()
		return err
	}
	for _, n := range narratives {
		if _, err := tx.Exec(`
UPDATE bindings SET narrative = ?, last_updated = ?
WHERE city_key = ? AND country_key = ? AND persona_id = ?`,
			n.Narrative, n.UpdatedAt, ck, nk, n.PersonaID); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecordJobExecution(exec weather.JobExecution) error {
	_, err := s.db.Exec(`
INSERT INTO job_executions (id, job_name, started_at, finished_at, status, detail)
VALUES (?, ?, ?, ?, ?, ?)`,
		exec.ID, exec.JobName, exec.StartedAt, exec.FinishedAt, exec.Status, exec.Detail)
	return err
}

func (s *SQLiteStore) PruneJobExecutions(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := s.db.Exec(`DELETE FROM job_executions WHERE finished_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
