package report

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	corereport "github.com/kilianp07/tgcsim/core/report"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    created_at INTEGER,
    rule TEXT,
    allocator TEXT,
    horizon_hours REAL,
    arrivals INTEGER,
    departed INTEGER,
    balked INTEGER,
    reneged INTEGER,
    in_progress INTEGER,
    mean_satisfaction REAL,
    queue_mean_length REAL,
    queue_max_length INTEGER,
    grid_ceiling_kw REAL,
    grid_energy_kwh REAL,
    grid_utilization REAL,
    grid_missed_kwh REAL,
    grid_unmet_kwh REAL
);
CREATE TABLE IF NOT EXISTS vehicles (
    run_id TEXT,
    vehicle_id TEXT,
    state TEXT,
    station_id TEXT,
    arrival REAL,
    charge_start REAL,
    departure REAL,
    requested_kwh REAL,
    delivered_kwh REAL,
    satisfaction REAL,
    PRIMARY KEY(run_id, vehicle_id)
);
CREATE TABLE IF NOT EXISTS stations (
    run_id TEXT,
    station_id TEXT,
    connected INTEGER,
    rated_kw REAL,
    energy_kwh REAL,
    utilization REAL,
    sessions INTEGER,
    PRIMARY KEY(run_id, station_id)
);
CREATE TABLE IF NOT EXISTS samples (
    run_id TEXT,
    kind TEXT,
    entity_id TEXT,
    at REAL,
    power_kw REAL
);`

// SQLiteStore persists run results in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// RecordSummary stores the run with its vehicles and stations in one
// transaction. Recording the same run twice replaces it.
func (s *SQLiteStore) RecordSummary(sum corereport.Summary) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	g := sum.Grid
	if _, err = tx.Exec(`INSERT OR REPLACE INTO runs VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sum.RunID, sum.CreatedAt.Unix(), sum.Rule, sum.Allocator, sum.HorizonHours,
		sum.Arrivals, sum.Departed, sum.Balked, sum.Reneged, sum.InProgress,
		sum.MeanSatisfaction, sum.QueueMeanLength, sum.QueueMaxLength,
		g.CeilingKW, g.EnergyKWh, g.Utilization, g.MissedKWh, g.UnmetKWh); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, v := range sum.Vehicles {
		if _, err = tx.Exec(`INSERT OR REPLACE INTO vehicles VALUES (?,?,?,?,?,?,?,?,?,?)`,
			sum.RunID, v.ID, v.State, v.StationID, v.Arrival, v.ChargeStart, v.Departure,
			v.RequestedKWh, v.DeliveredKWh, v.Satisfaction); err != nil {
			return fmt.Errorf("insert vehicle %s: %w", v.ID, err)
		}
	}
	for _, st := range sum.Stations {
		if _, err = tx.Exec(`INSERT OR REPLACE INTO stations VALUES (?,?,?,?,?,?,?)`,
			sum.RunID, st.ID, st.Connected, st.RatedKW, st.EnergyKWh, st.Utilization, st.Sessions); err != nil {
			return fmt.Errorf("insert station %s: %w", st.ID, err)
		}
	}
	return tx.Commit()
}

// RecordSeries stores the power samples, replacing earlier ones of the run.
func (s *SQLiteStore) RecordSeries(runID string, series []corereport.Series) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.Exec(`DELETE FROM samples WHERE run_id = ?`, runID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO samples VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, sr := range series {
		for _, smp := range sr.Samples {
			if _, err = stmt.Exec(runID, sr.Kind, sr.ID, smp.At, smp.PowerKW); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// RunRow is one stored run.
type RunRow struct {
	RunID            string
	CreatedAt        time.Time
	Rule             string
	Arrivals         int
	Departed         int
	Balked           int
	MeanSatisfaction float64
	GridEnergyKWh    float64
}

// Runs returns the stored runs, newest first.
func (s *SQLiteStore) Runs() ([]RunRow, error) {
	rows, err := s.db.Query(`SELECT run_id, created_at, rule, arrivals, departed, balked,
        mean_satisfaction, grid_energy_kwh FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunRow
	for rows.Next() {
		var r RunRow
		var created int64
		if err := rows.Scan(&r.RunID, &created, &r.Rule, &r.Arrivals, &r.Departed, &r.Balked,
			&r.MeanSatisfaction, &r.GridEnergyKWh); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		res = append(res, r)
	}
	return res, rows.Err()
}

// SampleCount returns the number of stored samples of a run.
func (s *SQLiteStore) SampleCount(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM samples WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
