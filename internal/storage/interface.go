package storage

import "errors"

var (
	// ErrRecordNotFound is returned by GetRecord when no record exists for a key.
	ErrRecordNotFound = errors.New("record not found")
	// ErrNotLoaded is returned when a provider is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

// Provider is a durable key-value store holding whole serialized records.
// A successful PutRecord must be durable before it returns.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Records
	GetRecord(key string) ([]byte, error)
	PutRecord(key string, data []byte) error

	// Utils
	GetConfigPath() string
}
