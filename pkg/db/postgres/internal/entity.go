package internal

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"

	"github.com/ziotom78/instrumentdb/pkg/db/postgres/errs"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"
)

func CreateEntity(ctx context.Context, conn kpool.Queryer, entity domain.Entity) (domain.Entity, error) {
	if err := domain.ValidateName(entity.Name); err != nil {
		return domain.Entity{}, err
	}
	entity.UUID = OrNew(entity.UUID)

	if _, err := conn.Exec(
		ctx,
		`INSERT INTO "entity" ("uuid", "name", "parent") VALUES ($1, $2, $3)`,
		entity.UUID.String(), entity.Name, ToPgUUID(entity.Parent),
	); err != nil {
		return domain.Entity{}, errs.Translate(err, "entity", entity.Name)
	}
	return entity, nil
}

// UpsertEntity re-states an existing entity (same uuid) in place; the
// archive import uses it so re-importing a document is idempotent.
func UpsertEntity(ctx context.Context, conn kpool.Queryer, entity domain.Entity) (domain.Entity, error) {
	if err := domain.ValidateName(entity.Name); err != nil {
		return domain.Entity{}, err
	}
	entity.UUID = OrNew(entity.UUID)

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "entity" ("uuid", "name", "parent") VALUES ($1, $2, $3)
		ON CONFLICT ("uuid") DO UPDATE SET
			"name" = EXCLUDED."name",
			"parent" = EXCLUDED."parent"
		`,
		entity.UUID.String(), entity.Name, ToPgUUID(entity.Parent),
	); err != nil {
		return domain.Entity{}, errs.Translate(err, "entity", entity.Name)
	}
	return entity, nil
}

func scanEntity(row interface{ Scan(...interface{}) error }) (domain.Entity, error) {
	var entity domain.Entity
	var id string
	var parent pgtype.UUID
	if err := row.Scan(&id, &entity.Name, &parent); err != nil {
		return domain.Entity{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Entity{}, err
	}
	entity.UUID = parsed
	entity.Parent = FromPgUUID(parent)
	return entity, nil
}

func entityList(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]domain.Entity, error) {
	entities := []domain.Entity{}
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func GetEntities(ctx context.Context, conn kpool.Queryer, uuids []uuid.UUID) (map[uuid.UUID]domain.Entity, error) {
	found := map[uuid.UUID]domain.Entity{}
	if len(uuids) == 0 {
		return found, nil
	}

	rows, err := conn.Query(
		ctx,
		`SELECT "uuid", "name", "parent" FROM "entity" WHERE "uuid" = any($1::uuid[])`,
		slices.Map(uuids, func(id uuid.UUID) string { return id.String() }),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities, err := entityList(rows)
	if err != nil {
		return nil, err
	}
	for _, entity := range entities {
		found[entity.UUID] = entity
	}
	return found, nil
}

func RootEntities(ctx context.Context, conn kpool.Queryer) ([]domain.Entity, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT "uuid", "name", "parent" FROM "entity"
		WHERE "parent" IS NULL ORDER BY "name"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return entityList(rows)
}

func ChildEntities(ctx context.Context, conn kpool.Queryer, parent uuid.UUID) ([]domain.Entity, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT "uuid", "name", "parent" FROM "entity"
		WHERE "parent" = $1 ORDER BY "name"`,
		parent.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return entityList(rows)
}

func ListEntities(ctx context.Context, conn kpool.Queryer) ([]domain.Entity, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT "uuid", "name", "parent" FROM "entity" ORDER BY "name", "uuid"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return entityList(rows)
}

// ResolvePath walks the tree root-down along segments. The recursive part
// follows the (parent, name) unique index, so each level is one index
// probe regardless of tree size.
func ResolvePath(ctx context.Context, conn kpool.Queryer, segments []string) (domain.Entity, error) {
	if len(segments) == 0 {
		return domain.Entity{}, errs.Missing{Table: "entity", Identity: "(empty path)"}
	}

	entity, err := scanEntity(conn.QueryRow(
		ctx,
		`
		WITH RECURSIVE "walk" ("uuid", "name", "parent", "depth") AS (
			SELECT "uuid", "name", "parent", 1
			FROM "entity"
			WHERE "parent" IS NULL AND "name" = ($1::varchar[])[1]
		UNION ALL
			SELECT "e"."uuid", "e"."name", "e"."parent", "walk"."depth" + 1
			FROM "entity" AS "e"
			INNER JOIN "walk" ON "e"."parent" = "walk"."uuid"
			WHERE "e"."name" = ($1::varchar[])["walk"."depth" + 1]
		)
		SELECT "uuid", "name", "parent" FROM "walk" WHERE "depth" = $2
		`,
		segments, len(segments),
	))
	if err != nil {
		return domain.Entity{}, errs.Translate(
			err, "entity", strings.Join(segments, "/"),
		)
	}
	return entity, nil
}

// FullPath climbs from the entity to its root and returns the names,
// root first.
func FullPath(ctx context.Context, conn kpool.Queryer, id uuid.UUID) ([]string, error) {
	rows, err := conn.Query(
		ctx,
		`
		WITH RECURSIVE "up" ("uuid", "name", "parent", "height") AS (
			SELECT "uuid", "name", "parent", 0
			FROM "entity" WHERE "uuid" = $1
		UNION ALL
			SELECT "e"."uuid", "e"."name", "e"."parent", "up"."height" + 1
			FROM "entity" AS "e"
			INNER JOIN "up" ON "e"."uuid" = "up"."parent"
		)
		SELECT "name" FROM "up" ORDER BY "height" DESC
		`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		segments = append(segments, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errs.Missing{Table: "entity", Identity: id.String()}
	}
	return segments, nil
}

func DeleteEntity(ctx context.Context, conn kpool.Queryer, id uuid.UUID) error {
	tag, err := conn.Exec(
		ctx, `DELETE FROM "entity" WHERE "uuid" = $1`, id.String(),
	)
	if err != nil {
		return errs.Translate(err, "entity", id.String())
	}
	if tag.RowsAffected() == 0 {
		return errs.Missing{Table: "entity", Identity: id.String()}
	}
	return nil
}
