package runstore

import "time"

// #region run-record

// RunRecord is one persisted solver run: the inputs that produced it and
// the best decoding found. Rows live in the solver_runs table.
type RunRecord struct {
	RunID      string
	ModelID    string // references model_cache; empty if the model was not cached
	Ciphertext string

	Seed         int64
	AcceptTarget int
	MaxStallRun  int
	Rule         string
	Chains       int
	Restarts     int

	BestLegend    string
	BestScore     float64
	Decoded       string
	AcceptedMoves int
	Proposals     int
	Stalled       bool

	CreatedAt time.Time
}

// #endregion run-record

// #region model-record

// ModelRecord is a cached transition model built from a labeled corpus.
type ModelRecord struct {
	ModelID   string
	Label     string
	LineCount int
	CreatedAt time.Time
}

// #endregion model-record
