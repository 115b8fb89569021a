// Package try wraps (value, error) pairs, mostly to flatten test setup.
package try

// Fataler is anything with Fatal, like *testing.T or log.Logger.
type Fataler interface {
	Fatal(...any)
}

type helper interface {
	Helper()
}

// Either holds a value or the error that prevented it.
type Either[T any] struct {
	val T
	err error
}

// To wraps a (value, error) pair.
func To[T any](val T, err error) Either[T] {
	return Either[T]{val: val, err: err}
}

func (e Either[T]) Get() (T, error) {
	return e.val, e.err
}

// OrFatal returns the value, or calls ftl.Fatal with the error.
func (e Either[T]) OrFatal(ftl Fataler) T {
	if e.err != nil {
		if h, ok := ftl.(helper); ok {
			h.Helper()
		}
		ftl.Fatal(e.err)
	}
	return e.val
}

// OrDefault returns the value, or def on error.
func (e Either[T]) OrDefault(def T) T {
	if e.err != nil {
		return def
	}
	return e.val
}
