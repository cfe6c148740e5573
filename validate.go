package momento

import (
	"strings"
	"time"
)

func validateCacheName(name string) error {
	return validateName("Cache", name)
}

// validateName rejects blank names; kind starts the error message.
func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidArgument("%s name cannot be empty", kind)
	}
	return nil
}

func validateTTL(ttl time.Duration) error {
	if ttl < 0 {
		return invalidArgument("TTL provided, %s, must not be negative", ttl)
	}
	if ttl > 0 && ttl < time.Millisecond {
		return invalidArgument("TTL provided, %s, must be at least 1ms", ttl)
	}
	return nil
}

func validateNotEmpty[T any](kind string, items []T) error {
	if len(items) == 0 {
		return invalidArgument("%s cannot be empty", kind)
	}
	return nil
}

func ttlMillis(ttl time.Duration) uint64 {
	return uint64(ttl.Milliseconds())
}
