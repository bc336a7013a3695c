// Package store provides a SQLite-backed history of projection summaries.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/fincast/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// History provides SQLite-backed projection history.
type History struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// Stat is the stored subset of a distribution's statistics.
type Stat struct {
	Mean          float64
	StdDev        float64
	FractionBelow float64
}

// AccountStat holds the stored statistics for one account's final balance.
type AccountStat struct {
	Mean   float64
	StdDev float64
	P10    float64
	P50    float64
	P90    float64
}

// Record is one stored projection.
type Record struct {
	ID           string
	Scenario     model.Scenario
	CreatedAt    time.Time
	Runs         int
	Weeks        int
	Seed         uint64
	InitialTotal float64
	Liquid       Stat
	Total        Stat
	Accounts     map[model.Account]AccountStat
}

// NewRecord builds a record from a scenario and its ensemble summary.
func NewRecord(s model.Scenario, sum model.EnsembleSummary) Record {
	rec := Record{
		Scenario:     s,
		CreatedAt:    time.Now().UTC(),
		Runs:         sum.Runs,
		Weeks:        sum.Weeks,
		Seed:         sum.Seed,
		InitialTotal: sum.InitialTotal,
		Liquid: Stat{
			Mean:          sum.Liquid.Mean,
			StdDev:        sum.Liquid.StdDev,
			FractionBelow: sum.Liquid.FractionBelow,
		},
		Total: Stat{
			Mean:          sum.Total.Mean,
			StdDev:        sum.Total.StdDev,
			FractionBelow: sum.Total.FractionBelow,
		},
		Accounts: make(map[model.Account]AccountStat, len(sum.Accounts)),
	}
	for a, ds := range sum.Accounts {
		rec.Accounts[a] = AccountStat{
			Mean: ds.Mean, StdDev: ds.StdDev,
			P10: ds.P10, P50: ds.P50, P90: ds.P90,
		}
	}
	return rec
}

// SaveProjection stores a record and returns its ID. A record without an
// ID is assigned a new UUID.
func (h *History) SaveProjection(rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	scenarioJSON, err := json.Marshal(rec.Scenario)
	if err != nil {
		return "", fmt.Errorf("encoding scenario: %w", err)
	}

	tx, err := h.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`INSERT OR REPLACE INTO projections
		(id, scenario_name, scenario_json, created_at, runs, weeks, seed, initial_total,
		 liquid_mean, liquid_stdev, liquid_below, total_mean, total_stdev, total_below)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Scenario.Name, string(scenarioJSON), rec.CreatedAt.UTC().Format(timeLayout),
		rec.Runs, rec.Weeks, strconv.FormatUint(rec.Seed, 10), rec.InitialTotal,
		rec.Liquid.Mean, rec.Liquid.StdDev, rec.Liquid.FractionBelow,
		rec.Total.Mean, rec.Total.StdDev, rec.Total.FractionBelow,
	)
	if err != nil {
		return "", err
	}

	_, err = tx.Exec("DELETE FROM projection_accounts WHERE projection_id = ?", rec.ID)
	if err != nil {
		return "", err
	}

	for a, st := range rec.Accounts {
		_, err = tx.Exec(`INSERT INTO projection_accounts
			(projection_id, account, mean, stdev, p10, p50, p90)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, a.Key(), st.Mean, st.StdDev, st.P10, st.P50, st.P90,
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

const selectProjection = `SELECT
	id, scenario_json, created_at, runs, weeks, seed, initial_total,
	liquid_mean, liquid_stdev, liquid_below, total_mean, total_stdev, total_below
	FROM projections`

// ListProjections returns stored projections, most recent first.
// A limit of zero or less returns all of them.
func (h *History) ListProjections(limit int) ([]Record, error) {
	query := selectProjection + " ORDER BY created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return h.queryRecords(query, args...)
}

// LatestForScenario returns the most recent projection for a scenario name,
// or nil if none has been stored.
func (h *History) LatestForScenario(name string) (*Record, error) {
	recs, err := h.queryRecords(selectProjection+
		" WHERE scenario_name = ? ORDER BY created_at DESC LIMIT 1", name)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// GetProjection returns a projection by ID or ID prefix.
func (h *History) GetProjection(id string) (*Record, error) {
	recs, err := h.queryRecords(selectProjection+" WHERE id LIKE ? ORDER BY created_at DESC", id+"%")
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, fmt.Errorf("projection %q not found", id)
	case 1:
		return &recs[0], nil
	default:
		return nil, fmt.Errorf("projection prefix %q is ambiguous (%d matches)", id, len(recs))
	}
}

func (h *History) queryRecords(query string, args ...any) ([]Record, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recs []Record
	for rows.Next() {
		var rec Record
		var scenarioJSON, createdAt, seed string
		err := rows.Scan(
			&rec.ID, &scenarioJSON, &createdAt, &rec.Runs, &rec.Weeks, &seed, &rec.InitialTotal,
			&rec.Liquid.Mean, &rec.Liquid.StdDev, &rec.Liquid.FractionBelow,
			&rec.Total.Mean, &rec.Total.StdDev, &rec.Total.FractionBelow,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(scenarioJSON), &rec.Scenario); err != nil {
			return nil, fmt.Errorf("decoding scenario for %s: %w", rec.ID, err)
		}
		rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		rec.Seed, _ = strconv.ParseUint(seed, 10, 64)
		rec.Accounts = make(map[model.Account]AccountStat)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return recs, nil
	}

	// Batch-load account rows for the selected projections
	idx := make(map[string]int, len(recs))
	placeholders := make([]string, len(recs))
	ids := make([]any, len(recs))
	for i, r := range recs {
		idx[r.ID] = i
		placeholders[i] = "?"
		ids[i] = r.ID
	}

	acctRows, err := h.db.Query(`SELECT projection_id, account, mean, stdev, p10, p50, p90
		FROM projection_accounts WHERE projection_id IN (`+strings.Join(placeholders, ",")+`)`, ids...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = acctRows.Close() }()

	for acctRows.Next() {
		var pid, key string
		var st AccountStat
		if err := acctRows.Scan(&pid, &key, &st.Mean, &st.StdDev, &st.P10, &st.P50, &st.P90); err != nil {
			return nil, err
		}
		a, err := model.ParseAccount(key)
		if err != nil {
			continue
		}
		if i, ok := idx[pid]; ok {
			recs[i].Accounts[a] = st
		}
	}

	return recs, acctRows.Err()
}

// DeleteProjection removes a projection and its account rows.
func (h *History) DeleteProjection(id string) error {
	res, err := h.db.Exec("DELETE FROM projections WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ErrNotFound is returned when a projection ID does not exist.
var ErrNotFound = errors.New("projection not found")

// Count returns the number of stored projections.
func (h *History) Count() (int, error) {
	var count int
	err := h.db.QueryRow("SELECT COUNT(*) FROM projections").Scan(&count)
	return count, err
}
