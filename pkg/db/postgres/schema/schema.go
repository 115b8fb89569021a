// Package schema creates and upgrades the database schema.
//
// DDL files are embedded in the binary, one per schema version, named
// "<version>_<label>.sql". Upgrade applies, in order, every version above
// the one recorded in the "schema_version" table.
package schema

import (
	"context"
	"embed"
	"errors"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
)

//go:embed ddl/*.sql
var ddl embed.FS

type pgSchema struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) *pgSchema {
	return &pgSchema{pool: pool}
}

type version struct {
	Version int
	Path    string
}

func versions() ([]version, error) {
	entries, err := ddl.ReadDir("ddl")
	if err != nil {
		return nil, err
	}

	found := []version{}
	for _, entry := range entries {
		name := entry.Name()
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		found = append(found, version{Version: v, Path: path.Join("ddl", name)})
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].Version < found[j].Version
	})
	return found, nil
}

func (v version) Apply(ctx context.Context, conn kpool.Queryer) error {
	query, err := ddl.ReadFile(v.Path)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, string(query))
	return err
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return -1, err
	}
	defer conn.Release()

	var current int
	if err := conn.QueryRow(
		ctx, `SELECT coalesce(max("version"), 0) FROM "schema_version"`,
	).Scan(&current); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, err
	}
	return current, nil
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	current, err := s.Version(ctx)
	if err != nil {
		return err
	}

	schemaVersions, err := versions()
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, v := range schemaVersions {
		if v.Version <= current {
			continue
		}
		if err := v.Apply(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
			return err
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO "schema_version" ("version") VALUES ($1)`,
			v.Version,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
