package store

import "time"

// Config holds configuration for the Store.
type Config struct {
	// TableName is the name of the single entity table.
	// Default: "platewise"
	TableName string

	// KeyAttr is the table's hash key attribute.
	// Default: "entityId"
	KeyAttr string

	// TypeAttr is the attribute every index is partitioned on.
	// Default: "entityType"
	TypeAttr string

	// SlowOpThreshold logs any operation slower than this at WARN.
	// Zero disables slow operation logging.
	SlowOpThreshold time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TableName:       "platewise",
		KeyAttr:         "entityId",
		TypeAttr:        "entityType",
		SlowOpThreshold: 500 * time.Millisecond,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "platewise"
	}
	if c.KeyAttr == "" {
		c.KeyAttr = "entityId"
	}
	if c.TypeAttr == "" {
		c.TypeAttr = "entityType"
	}
	if c.SlowOpThreshold < 0 {
		c.SlowOpThreshold = 0
	}
}

// IndexName returns the secondary index that serves lookups of attr within an
// entity type. An empty attr names the type-only index.
func (c Config) IndexName(attr string) string {
	if attr == "" {
		return c.TypeAttr + "-index"
	}
	return c.TypeAttr + "-" + attr + "-index"
}
