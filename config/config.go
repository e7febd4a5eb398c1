// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config holds the engine configuration, loadable from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the tunable parameters of the retrieval engine.
// Zero values are filled from Default at validation time, so a partial YAML
// file only overrides what it names.
type Config struct {
	// MinTokenLength is the minimum token length in runes for indexing and
	// query tokenization. Both sides always share one value.
	MinTokenLength int `yaml:"min_token_length"`

	// PromptWeight and CompletionWeight set the ranking weights for
	// matches in each field.
	PromptWeight     int `yaml:"prompt_weight"`
	CompletionWeight int `yaml:"completion_weight"`

	// TermMinLength is the significant-term threshold for graph keywords
	// and related-concept query tokens.
	TermMinLength int `yaml:"term_min_length"`

	// KeywordCap bounds a document's keyword set before pairwise
	// co-occurrence counting.
	KeywordCap int `yaml:"keyword_cap"`

	// ClosestCutoff is the similarity cutoff for the legacy closest-match
	// backend.
	ClosestCutoff float64 `yaml:"closest_cutoff"`

	// DefaultTopN is the related-concepts result bound when callers pass
	// no explicit limit.
	DefaultTopN int `yaml:"default_top_n"`

	// CachePath is the graph cache directory. Empty disables persistence.
	CachePath string `yaml:"cache_path"`

	// PoolSize is the tokenizer worker pool size for index builds.
	PoolSize int `yaml:"pool_size"`

	// ResultCacheSize is the query-result LRU capacity.
	ResultCacheSize int `yaml:"result_cache_size"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		MinTokenLength:   3,
		PromptWeight:     2,
		CompletionWeight: 1,
		TermMinLength:    4,
		KeywordCap:       64,
		ClosestCutoff:    0.4,
		DefaultTopN:      10,
		PoolSize:         max(runtime.NumCPU()/2, 1),
		ResultCacheSize:  128,
	}
}

// LoadFile reads a YAML configuration file over the defaults.
// Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills zero values from Default and rejects out-of-range settings.
func (c *Config) Validate() error {
	def := Default()
	if c.MinTokenLength == 0 {
		c.MinTokenLength = def.MinTokenLength
	}
	if c.PromptWeight == 0 {
		c.PromptWeight = def.PromptWeight
	}
	if c.CompletionWeight == 0 {
		c.CompletionWeight = def.CompletionWeight
	}
	if c.TermMinLength == 0 {
		c.TermMinLength = def.TermMinLength
	}
	if c.KeywordCap == 0 {
		c.KeywordCap = def.KeywordCap
	}
	if c.ClosestCutoff == 0 {
		c.ClosestCutoff = def.ClosestCutoff
	}
	if c.DefaultTopN == 0 {
		c.DefaultTopN = def.DefaultTopN
	}
	if c.PoolSize == 0 {
		c.PoolSize = def.PoolSize
	}
	if c.ResultCacheSize == 0 {
		c.ResultCacheSize = def.ResultCacheSize
	}

	switch {
	case c.MinTokenLength < 1:
		return fmt.Errorf("%w: min_token_length must be positive", ErrInvalidConfig)
	case c.PromptWeight < 1 || c.CompletionWeight < 1:
		return fmt.Errorf("%w: field weights must be positive", ErrInvalidConfig)
	case c.TermMinLength < 1:
		return fmt.Errorf("%w: term_min_length must be positive", ErrInvalidConfig)
	case c.KeywordCap < 2:
		return fmt.Errorf("%w: keyword_cap must be at least 2", ErrInvalidConfig)
	case c.ClosestCutoff < 0 || c.ClosestCutoff > 1:
		return fmt.Errorf("%w: closest_cutoff must be within [0,1]", ErrInvalidConfig)
	case c.DefaultTopN < 1:
		return fmt.Errorf("%w: default_top_n must be positive", ErrInvalidConfig)
	case c.PoolSize < 1:
		return fmt.Errorf("%w: pool_size must be positive", ErrInvalidConfig)
	case c.ResultCacheSize < 1:
		return fmt.Errorf("%w: result_cache_size must be positive", ErrInvalidConfig)
	}
	return nil
}
