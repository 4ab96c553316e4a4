package utils

import (
	"fmt"
	"log"
	"runtime/debug"
	"time"
	"unicode/utf8"
)

// GoSafe runs fn in a goroutine and keeps a panic from taking the process down.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic in goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}

// TruncateRunes returns at most max characters of s.
func TruncateRunes(s string, max int) string {
	if max < 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// RunTimestamp formats t the way run names are suffixed (20060102_150405).
func RunTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// UnixSeconds converts t to fractional unix seconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// RecoverError turns a recovered panic value into an error.
func RecoverError(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
