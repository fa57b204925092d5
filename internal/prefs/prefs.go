// Package prefs is the durable key-value boundary the tracking core persists
// through. Values are stored as text; typed getters parse leniently and fall
// back to the caller's default on missing or malformed data, so corrupt
// storage degrades instead of failing.
package prefs

import (
	"context"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Store is a per-user durable key-value store.
//
// PutAll writes every entry as one atomic unit. Rollover depends on this: the
// accumulator fields and the ledger must never be observable half-written.
type Store interface {
	GetString(ctx context.Context, key, def string) string
	GetInt(ctx context.Context, key string, def int) int
	GetFloat(ctx context.Context, key string, def float64) float64
	PutString(ctx context.Context, key, value string) error
	PutInt(ctx context.Context, key string, value int) error
	PutFloat(ctx context.Context, key string, value float64) error
	PutAll(ctx context.Context, values map[string]string) error
}

func parseInt(key, raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("prefs: malformed int for key %s: %q, using default %d", key, raw, def)
		return def
	}
	return n
}

func parseFloat(key, raw string, def float64) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("prefs: malformed float for key %s: %q, using default %v", key, raw, def)
		return def
	}
	return f
}

// FormatInt renders an int the way Put/Get round-trips it.
func FormatInt(n int) string {
	return strconv.Itoa(n)
}

// FormatFloat renders a float the way Put/Get round-trips it.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
