package cleaner

// NoopCleaner passes content through without modification.
// The server uses it when cleaning is switched off in the configuration,
// so the synthesizer reads the raw text.
type NoopCleaner struct{}

// NewNoop creates a new no-op cleaner.
func NewNoop() *NoopCleaner {
	return &NoopCleaner{}
}

// Clean returns the input unchanged.
func (c *NoopCleaner) Clean(content string) (string, error) {
	return content, nil
}

// Name returns the cleaner type.
func (c *NoopCleaner) Name() string {
	return "noop"
}
