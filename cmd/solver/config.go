package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// #region config

// solverConfig is loaded from solver.yaml. Every field has a default, so
// the file is optional; SOLVER_DB and SOLVER_CORPUS env vars override.
type solverConfig struct {
	DBPath      string `yaml:"db_path"`
	CorpusPath  string `yaml:"corpus_path"`
	CorpusLabel string `yaml:"corpus_label"`
	Workers     int    `yaml:"corpus_workers"`

	Seed         int64  `yaml:"seed"`
	AcceptTarget int    `yaml:"accept_target"`
	MaxStallRun  int    `yaml:"max_stall_run"`
	Rule         string `yaml:"rule"`
	Chains       int    `yaml:"chains"`
	Restarts     int    `yaml:"restarts"`
}

func defaultConfig() solverConfig {
	return solverConfig{
		DBPath:       "solver.db",
		CorpusLabel:  "default",
		Workers:      1,
		Seed:         1,
		AcceptTarget: 2000,
		MaxStallRun:  0,
		Rule:         "logdiff",
		Chains:       1,
		Restarts:     0,
	}
}

// loadConfig reads path if it exists; a missing file is not an error and
// yields the defaults.
func loadConfig(path string) (solverConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(cfg), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg solverConfig) solverConfig {
	cfg.DBPath = envOr("SOLVER_DB", cfg.DBPath)
	cfg.CorpusPath = envOr("SOLVER_CORPUS", cfg.CorpusPath)
	if v := os.Getenv("SOLVER_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion config
