package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// requested record does not exist.
	ErrNotFound = errors.New("not found")

	// a uniqueness constraint (sibling name, tag, document_ref) is violated.
	ErrConflict = errors.New("conflict")

	// input is malformed or violates a record constraint.
	ErrValidation = errors.New("validation error")

	// a single record was expected but the store holds more than one.
	ErrTooMuch = errors.New("too much")

	// the object storage collaborator failed.
	ErrStorage = errors.New("storage error")
)

// Problems is a batch of validation failures.
//
// Bulk operations (import, release creation) report every problem they found
// at once, so the operator can fix a document in one edit-retry cycle.
type Problems struct {
	found []string
}

var _ error = &Problems{}

func (p *Problems) Addf(format string, args ...any) {
	p.found = append(p.found, fmt.Sprintf(format, args...))
}

func (p *Problems) Add(problem string) {
	p.found = append(p.found, problem)
}

// Merge takes over all problems recorded in other.
func (p *Problems) Merge(other *Problems) {
	if other == nil {
		return
	}
	p.found = append(p.found, other.found...)
}

func (p *Problems) Empty() bool {
	return p == nil || len(p.found) == 0
}

func (p *Problems) Each() []string {
	if p == nil {
		return nil
	}
	return p.found
}

// AsError returns p itself when it holds problems, or nil.
func (p *Problems) AsError() error {
	if p.Empty() {
		return nil
	}
	return p
}

func (p *Problems) Error() string {
	return fmt.Sprintf(
		"%d problem(s): %s",
		len(p.found), strings.Join(p.found, "; "),
	)
}

func (p *Problems) Unwrap() error {
	return ErrValidation
}
