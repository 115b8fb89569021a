// Package internal holds the SQL shared by the per-table packages and by
// the archive transaction. Every function takes a Queryer, so the same
// statements run on a pooled connection or inside an open transaction.
package internal

import (
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
)

// ToPgUUID encodes an optional uuid for a nullable column.
func ToPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Status: pgtype.Null}
	}
	return pgtype.UUID{Bytes: *id, Status: pgtype.Present}
}

// FromPgUUID decodes a nullable uuid column.
func FromPgUUID(value pgtype.UUID) *uuid.UUID {
	if value.Status != pgtype.Present {
		return nil
	}
	id := uuid.UUID(value.Bytes)
	return &id
}

// OrNew keeps id unless it is the zero uuid, in which case a fresh one
// is assigned.
func OrNew(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
