// Package runstore persists solver runs, their improvement traces, and
// cached transition models in SQLite.
package runstore

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/alphabet"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/corpus"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/search"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS model_cache (
	model_id    TEXT PRIMARY KEY,
	label       TEXT NOT NULL UNIQUE,
	matrix      BLOB NOT NULL,
	line_count  INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS solver_runs (
	run_id         TEXT PRIMARY KEY,
	model_id       TEXT,
	ciphertext     TEXT NOT NULL,
	seed           INTEGER NOT NULL,
	accept_target  INTEGER NOT NULL,
	max_stall_run  INTEGER NOT NULL,
	rule           TEXT NOT NULL,
	chains         INTEGER NOT NULL,
	restarts       INTEGER NOT NULL,
	best_legend    TEXT NOT NULL,
	best_score     REAL NOT NULL,
	decoded        TEXT NOT NULL,
	accepted_moves INTEGER NOT NULL,
	proposals      INTEGER NOT NULL,
	stalled        INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (model_id) REFERENCES model_cache(model_id)
);

CREATE TABLE IF NOT EXISTS improvement_trace (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	accepted_move INTEGER NOT NULL,
	best_score    REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES solver_runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_trace_run ON improvement_trace(run_id);
`

// #endregion schema

// ErrNotFound is returned when a requested run or model does not exist.
var ErrNotFound = errors.New("runstore: not found")

// #region store-struct

// Store manages solver history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for ad-hoc inspection queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region save-run

// SaveRun inserts a run and its improvement trace in one transaction.
// A missing RunID or CreatedAt is filled in; the stored record is
// returned.
func (s *Store) SaveRun(rec RunRecord, trace []search.TracePoint) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return RunRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO solver_runs (run_id, model_id, ciphertext, seed, accept_target, max_stall_run,
		                          rule, chains, restarts, best_legend, best_score, decoded,
		                          accepted_moves, proposals, stalled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, nullIfEmpty(rec.ModelID), rec.Ciphertext, rec.Seed, rec.AcceptTarget,
		rec.MaxStallRun, rec.Rule, rec.Chains, rec.Restarts, rec.BestLegend, rec.BestScore,
		rec.Decoded, rec.AcceptedMoves, rec.Proposals, boolToInt(rec.Stalled),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}

	for _, p := range trace {
		_, err = tx.Exec(
			`INSERT INTO improvement_trace (run_id, accepted_move, best_score) VALUES (?, ?, ?)`,
			rec.RunID, p.Accepted, p.BestScore,
		)
		if err != nil {
			return RunRecord{}, fmt.Errorf("insert trace point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion save-run

// #region get-run

// GetRun reads one run by id.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, model_id, ciphertext, seed, accept_target, max_stall_run, rule, chains,
		        restarts, best_legend, best_score, decoded, accepted_moves, proposals, stalled, created_at
		 FROM solver_runs WHERE run_id = ?`, runID,
	)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, model_id, ciphertext, seed, accept_target, max_stall_run, rule, chains,
		        restarts, best_legend, best_score, decoded, accepted_moves, proposals, stalled, created_at
		 FROM solver_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Trace reads a run's improvement trace in recorded order.
func (s *Store) Trace(runID string) ([]search.TracePoint, error) {
	rows, err := s.db.Query(
		`SELECT accepted_move, best_score FROM improvement_trace WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()

	var trace []search.TracePoint
	for rows.Next() {
		var p search.TracePoint
		if err := rows.Scan(&p.Accepted, &p.BestScore); err != nil {
			return nil, fmt.Errorf("scan trace point: %w", err)
		}
		trace = append(trace, p)
	}
	return trace, rows.Err()
}

// #endregion get-run

// #region model-cache

// SaveModel caches a transition model under a corpus label, replacing
// the stored matrix for that label. The model id is stable across
// replacements so existing runs keep a valid reference. Returns the id.
func (s *Store) SaveModel(label string, m *corpus.TransitionMatrix, lineCount int) (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT model_id FROM model_cache WHERE label = ?`, label).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		id = uuid.New().String()
	} else if err != nil {
		return "", fmt.Errorf("save model: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO model_cache (model_id, label, matrix, line_count, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(label) DO UPDATE SET
		   matrix = excluded.matrix,
		   line_count = excluded.line_count,
		   created_at = excluded.created_at`,
		id, label, encodeMatrix(m), lineCount, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("save model: %w", err)
	}
	return id, nil
}

// GetModel reads a cached model by corpus label.
func (s *Store) GetModel(label string) (ModelRecord, corpus.TransitionMatrix, error) {
	return s.getModel(`SELECT model_id, label, matrix, line_count, created_at FROM model_cache WHERE label = ?`, label)
}

// GetModelByID reads a cached model by id.
func (s *Store) GetModelByID(modelID string) (ModelRecord, corpus.TransitionMatrix, error) {
	return s.getModel(`SELECT model_id, label, matrix, line_count, created_at FROM model_cache WHERE model_id = ?`, modelID)
}

func (s *Store) getModel(query, arg string) (ModelRecord, corpus.TransitionMatrix, error) {
	var (
		rec       ModelRecord
		blob      []byte
		createdAt string
	)
	err := s.db.QueryRow(query, arg).Scan(&rec.ModelID, &rec.Label, &blob, &rec.LineCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelRecord{}, corpus.TransitionMatrix{}, fmt.Errorf("model %s: %w", arg, ErrNotFound)
	}
	if err != nil {
		return ModelRecord{}, corpus.TransitionMatrix{}, fmt.Errorf("get model: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	m, err := decodeMatrix(blob)
	if err != nil {
		return ModelRecord{}, corpus.TransitionMatrix{}, err
	}
	return rec, m, nil
}

// #endregion model-cache

// #region encoding

const matrixBlobLen = alphabet.Size * alphabet.Size * 8

// encodeMatrix serializes the matrix as little-endian float64s in
// row-major order.
func encodeMatrix(m *corpus.TransitionMatrix) []byte {
	buf := make([]byte, 0, matrixBlobLen)
	for i := range m {
		for j := range m[i] {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(m[i][j]))
		}
	}
	return buf
}

func decodeMatrix(blob []byte) (corpus.TransitionMatrix, error) {
	var m corpus.TransitionMatrix
	if len(blob) != matrixBlobLen {
		return m, fmt.Errorf("matrix blob: want %d bytes, got %d", matrixBlobLen, len(blob))
	}
	off := 0
	for i := range m {
		for j := range m[i] {
			m[i][j] = math.Float64frombits(binary.LittleEndian.Uint64(blob[off:]))
			off += 8
		}
	}
	return m, nil
}

// #endregion encoding

// #region helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec       RunRecord
		modelID   sql.NullString
		stalled   int
		createdAt string
	)
	err := row.Scan(
		&rec.RunID, &modelID, &rec.Ciphertext, &rec.Seed, &rec.AcceptTarget, &rec.MaxStallRun,
		&rec.Rule, &rec.Chains, &rec.Restarts, &rec.BestLegend, &rec.BestScore, &rec.Decoded,
		&rec.AcceptedMoves, &rec.Proposals, &stalled, &createdAt,
	)
	if err != nil {
		return RunRecord{}, err
	}
	rec.ModelID = modelID.String
	rec.Stalled = stalled != 0
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return rec, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
