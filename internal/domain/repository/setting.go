package repository

import "context"

// SettingRepository defines the interface for the durable key/value settings store.
type SettingRepository interface {
	// Get returns the stored value for key. found is false when the key (or
	// the whole document) is absent; that is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value under key, creating the document when needed.
	Set(ctx context.Context, key string, value string) error
}
