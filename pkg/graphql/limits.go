package graphql

import (
	"fmt"
)

// LimitConfig defines limits for list query results
type LimitConfig struct {
	DefaultLimit int // used when no page size is given
	MaxLimit     int
}

// DefaultLimits mirrors hosted indexers: 100 by default, 1000 at most
var DefaultLimits = LimitConfig{DefaultLimit: 100, MaxLimit: 1000}

// ValidateLimitConfig validates the limit configuration
func ValidateLimitConfig(config *LimitConfig) error {
	if config.MaxLimit <= 0 {
		return fmt.Errorf("max limit must be greater than 0, got %d", config.MaxLimit)
	}
	if config.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be greater than 0, got %d", config.DefaultLimit)
	}
	if config.DefaultLimit > config.MaxLimit {
		return fmt.Errorf("default limit (%d) cannot exceed max limit (%d)", config.DefaultLimit, config.MaxLimit)
	}
	return nil
}

// applyLimit caps a requested page size; a negative request means unset
func applyLimit(requested int, config LimitConfig) int {
	if requested < 0 {
		return config.DefaultLimit
	}
	if requested > config.MaxLimit {
		return config.MaxLimit
	}
	return requested
}

// intArg returns args[name] or -1 when absent
func intArg(args map[string]any, name string) int {
	if v, ok := args[name].(int); ok {
		return v
	}
	return -1
}

// page slices records[offset:offset+limit] with bounds clamped
func page(records []Record, offset, limit int) []Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []Record{}
	}
	end := len(records)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end]
}
