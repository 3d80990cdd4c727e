package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Get retrieves a value from the cache
	// Returns the value and a boolean indicating whether the key was found
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set adds a value to the cache with the specified expiration
	// If expiration is 0, the cache default is used
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
}

// Predefined cache key prefixes for different result types
const (
	PrefixServiceEnd         = "proration:service_end:v1"
	PrefixServiceStart       = "proration:service_start:v1"
	PrefixPlanChange         = "proration:plan_change:v1"
	PrefixPlanChangeInPeriod = "proration:plan_change_in_period:v1"
	PrefixBillingPeriods     = "proration:periods:v1"
)

// GenerateKey creates a cache key from a prefix and a set of parameters
// It joins all parameters with a colon and appends them to the prefix
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = prefix

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}

// GenerateHashKey creates a cache key from a prefix and the SHA-256 of the
// canonical JSON encoding of params. Struct fields encode in declaration order
// and map keys are sorted, so equal inputs always produce the same key.
func GenerateHashKey(prefix string, params interface{}) (string, error) {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(params)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return GenerateKey(prefix, hex.EncodeToString(sum[:])), nil
}
