// Package errs maps PostgreSQL failures onto the catalog error kinds.
package errs

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// Missing says a record was looked up by identity and not found.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return domain.ErrNotFound
}

// TooMuch says a single record was expected but several matched.
type TooMuch struct {
	Table    string
	Identity string
}

var _ error = TooMuch{}

func (t TooMuch) Error() string {
	return fmt.Sprintf("%s is found in %s more than once", t.Identity, t.Table)
}

func (t TooMuch) Unwrap() error {
	return domain.ErrTooMuch
}

// Translate rewrites low-level database errors into the catalog kinds:
// unique violations become domain.ErrConflict, foreign key violations
// domain.ErrNotFound (the referenced record is missing), check violations
// domain.ErrValidation. pgx.ErrNoRows becomes the Missing identified by
// table and identity. Anything else passes through untouched.
func Translate(err error, table string, identity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Missing{Table: table, Identity: identity}
	}

	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) {
		return err
	}
	switch pgerr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf(
			"%w: %s is taken in %s: %s",
			domain.ErrConflict, identity, table, pgerr.Detail,
		)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf(
			"%w: %s references a missing record: %s",
			domain.ErrNotFound, identity, pgerr.Detail,
		)
	case pgerrcode.CheckViolation, pgerrcode.StringDataRightTruncationDataException:
		return fmt.Errorf(
			"%w: %s in %s: %s",
			domain.ErrValidation, identity, table, pgerr.Message,
		)
	}
	return err
}
