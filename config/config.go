// Package config loads and validates node configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kairolabs/kairochain/crypto"
)

// Config holds all node configuration.
type Config struct {
	NodeID  string `json:"node_id"`
	DataDir string `json:"data_dir"`

	// GenesisHash seeds the PoH chain; every replica must agree on it.
	GenesisHash string `json:"genesis_hash"`

	// HashesPerTick is how many chain advances separate two heartbeats.
	HashesPerTick uint64 `json:"hashes_per_tick"`

	// EntryQueueDepth bounds the producer→consumer entry channel. A full
	// queue back-pressures the clock; 0 → 64.
	EntryQueueDepth int `json:"entry_queue_depth"`

	// MaxBatchTxs caps how many mempool transactions one producer batch
	// drains; 0 → 500.
	MaxBatchTxs int `json:"max_batch_txs"`
}

// DefaultConfig returns a single-node development configuration.
func DefaultConfig() *Config {
	return &Config{
		NodeID:          "node0",
		DataDir:         "./data",
		GenesisHash:     crypto.Hash{}.String(),
		HashesPerTick:   12_500,
		EntryQueueDepth: 64,
		MaxBatchTxs:     500,
	}
}

// Load reads a JSON config file from path and validates required fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("node_id must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if _, err := c.Genesis(); err != nil {
		return fmt.Errorf("genesis_hash: %w", err)
	}
	if c.HashesPerTick == 0 {
		return fmt.Errorf("hashes_per_tick must be positive")
	}
	if c.EntryQueueDepth < 0 {
		return fmt.Errorf("entry_queue_depth must not be negative")
	}
	if c.MaxBatchTxs < 0 {
		return fmt.Errorf("max_batch_txs must not be negative")
	}
	return nil
}

// Genesis decodes the configured genesis hash.
func (c *Config) Genesis() (crypto.Hash, error) {
	return crypto.HashFromHex(c.GenesisHash)
}

// QueueDepth returns EntryQueueDepth with the default applied.
func (c *Config) QueueDepth() int {
	if c.EntryQueueDepth == 0 {
		return 64
	}
	return c.EntryQueueDepth
}

// BatchLimit returns MaxBatchTxs with the default applied.
func (c *Config) BatchLimit() int {
	if c.MaxBatchTxs == 0 {
		return 500
	}
	return c.MaxBatchTxs
}

// Save writes the config to path as formatted JSON.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
