// Package cleaner provides interfaces and implementations for cleaning text
// before it is handed to a speech synthesizer.
// Cleaners are small string-to-string stages that can be composed with NewChain.
package cleaner

// Cleaner transforms content into a cleaner, more speakable form.
type Cleaner interface {
	// Clean transforms the input into a cleaned format.
	// Implementations that cannot fail always return a nil error.
	Clean(content string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
