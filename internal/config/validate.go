package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Collection == "" {
		return errors.New("store.collection must be set")
	}
	if c.Store.ChunkSize <= 0 {
		return errors.New("store.chunk_size must be positive")
	}
	if c.Store.ChunkOverlap < 0 {
		return errors.New("store.chunk_overlap must not be negative")
	}
	if c.Store.ChunkOverlap >= c.Store.ChunkSize {
		return errors.New("store.chunk_overlap must be smaller than store.chunk_size")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	switch c.Embedding.Provider {
	case "hash":
		return nil
	case "openai":
		if c.Embedding.APIKey == "" {
			return errors.New("embedding.api_key is required for the openai provider. Set OPENAI_API_KEY or edit the config file")
		}
		if c.Embedding.Dimension <= 0 {
			return errors.New("embedding.dimension must be positive")
		}
		return nil
	default:
		return fmt.Errorf("embedding.provider must be \"hash\" or \"openai\", got %q", c.Embedding.Provider)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
}
