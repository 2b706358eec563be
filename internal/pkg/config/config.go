package config

import (
	"io"
	"time"
)

// Config reads typed configuration values. Missing keys yield the zero value.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetFloat64(key string) float64

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetDuration reads a Go duration string such as "1m30s".
	GetDuration(key string) time.Duration

	// GetBinary reads a base64 encoded value.
	GetBinary(key string) []byte

	// GetArray reads a list, either as a native list or as a
	// comma separated string. Elements are trimmed and empty ones dropped.
	GetArray(key string) []string
}
