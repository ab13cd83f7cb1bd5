// Package config loads the YAML configuration file that drives
// cmd/ferret's default behavior when flags are not supplied.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the knobs exposed on the command line so a fixed
// environment (a CI job, a deployed service) can pin them once instead of
// repeating flags on every invocation.
type Config struct {
	Analyzer struct {
		Stemmer         string `yaml:"stemmer"` // "none", "porter", "snowball"
		Language        string `yaml:"language"`
		EnableStopwords bool   `yaml:"enable_stopwords"`
		MinTokenLength  int    `yaml:"min_token_length"`
	} `yaml:"analyzer"`

	Ranking struct {
		Enabled  bool `yaml:"enabled"`
		UseWFIDF bool `yaml:"use_wf_idf"`
	} `yaml:"ranking"`

	Correction struct {
		Spelling    bool `yaml:"spelling"`
		SpellingK   int  `yaml:"spelling_k"`
		MaxAttempts int  `yaml:"max_attempts"`
		Phonetic    bool `yaml:"phonetic"`
		Auto        bool `yaml:"auto"`
	} `yaml:"correction"`

	IndexPath string `yaml:"index_path"`

	// WorkingDirectory is where load-index/create-index resolve saved
	// index files by name (app.workingDirectory.name in spec.md's
	// key-value config grammar).
	WorkingDirectory string `yaml:"working_directory"`
}

// Default returns the configuration cmd/ferret falls back to when no
// config file is given.
func Default() *Config {
	c := &Config{}
	c.Analyzer.Stemmer = "snowball"
	c.Analyzer.Language = "english"
	c.Analyzer.EnableStopwords = true
	c.Analyzer.MinTokenLength = 2
	c.Ranking.Enabled = true
	c.Ranking.UseWFIDF = true
	c.Correction.Spelling = true
	c.Correction.SpellingK = 1
	c.Correction.MaxAttempts = 4
	c.Correction.Phonetic = false
	c.Correction.Auto = true
	c.IndexPath = "ferret.idx"
	c.WorkingDirectory = "workingDirectory"
	return c
}

// Load reads and parses a YAML config file, starting from Default() so a
// partial file only overrides the fields it sets.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
