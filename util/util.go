// Package util holds small general-purpose helpers shared across the
// module: slice and map utilities, string formatting, and the panic
// guard the runtime wraps user callbacks with.
package util

import (
	"fmt"
	"log"
	"runtime/debug"
	"sort"
)

// PanicHandler logs a recovered panic with a stack trace and converts it
// to an error. Returns nil when recoverVal is nil, so it can be called
// unconditionally from a deferred function:
//
//	defer func() {
//		err = util.PanicHandler("renderTemplate", recover())
//	}()
func PanicHandler(debugStr string, recoverVal any) error {
	if recoverVal == nil {
		return nil
	}
	log.Printf("[panic] in %s: %v\n", debugStr, recoverVal)
	debug.PrintStack()
	if err, ok := recoverVal.(error); ok {
		return fmt.Errorf("panic in %s: %w", debugStr, err)
	}
	return fmt.Errorf("panic in %s: %v", debugStr, recoverVal)
}

// Contains reports whether v occurs in xs.
func Contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// IndexOf returns the index of the first occurrence of v in xs, or -1.
func IndexOf[T comparable](xs []T, v T) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

// Unique returns xs with duplicates removed, preserving first-seen order.
func Unique[T comparable](xs []T) []T {
	seen := make(map[T]struct{}, len(xs))
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

// OrderedKeys returns the keys of m in sorted order.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeMaps combines maps left to right; later maps win on key conflicts.
// Returns a new map, never nil.
func MergeMaps[V any](ms ...map[string]V) map[string]V {
	out := make(map[string]V)
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
