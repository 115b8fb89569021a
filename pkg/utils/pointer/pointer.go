package pointer

// Ref returns a pointer to v, for literals and expression results.
func Ref[T any](v T) *T {
	return &v
}

// SafeDeref dereferences p, or returns the zero value when p is nil.
func SafeDeref[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}
