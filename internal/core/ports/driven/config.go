package driven

// ConfigStore provides persistent key-value configuration: the default
// repository, output location, and stored credential.
type ConfigStore interface {
	// Get retrieves a raw value by dot-notation key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if absent.
	GetString(key string) string

	// GetBool retrieves a boolean value, or false if absent.
	GetBool(key string) bool

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Path returns the backing file path for reporting.
	Path() string
}
