// Package replay re-executes a recorded solver run and verifies that the
// outcome reproduces. Because every chain draws from an explicitly
// seeded RNG, a run is fully determined by its inputs; any divergence is
// a regression.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/search"
)

// #region fixture-types

// Fixture is the JSON bundle of inputs and expected outcome for one run.
type Fixture struct {
	Description string        `json:"description"`
	CorpusLines []string      `json:"corpus_lines"`
	Ciphertext  string        `json:"ciphertext"`
	Config      FixtureConfig `json:"config"`
	Expected    Expected      `json:"expected"`
}

// FixtureConfig mirrors search.ChainConfig with JSON tags.
type FixtureConfig struct {
	Seed         int64  `json:"seed"`
	AcceptTarget int    `json:"accept_target"`
	MaxStallRun  int    `json:"max_stall_run"`
	Rule         string `json:"rule"`
	Chains       int    `json:"chains"`
	Restarts     int    `json:"restarts"`
}

// ChainConfig converts the fixture config into the search configuration.
func (c FixtureConfig) ChainConfig() search.ChainConfig {
	chains := c.Chains
	if chains < 1 {
		chains = 1
	}
	return search.ChainConfig{
		Chains:   chains,
		Restarts: c.Restarts,
		Base: search.Config{
			Seed:         c.Seed,
			AcceptTarget: c.AcceptTarget,
			MaxStallRun:  c.MaxStallRun,
			Rule:         search.AcceptanceRule(c.Rule),
		},
	}
}

// Expected captures the recorded outcome the replay must reproduce.
type Expected struct {
	BestLegend string  `json:"best_legend"`
	BestScore  float64 `json:"best_score"`
	Decoded    string  `json:"decoded"`
}

// #endregion fixture-types

// #region load-save

// LoadFixture reads and parses a fixture JSON file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Ciphertext == "" {
		return Fixture{}, fmt.Errorf("fixture %s: empty ciphertext", path)
	}
	return f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion load-save
