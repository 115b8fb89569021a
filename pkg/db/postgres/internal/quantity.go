package internal

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"

	"github.com/ziotom78/instrumentdb/pkg/db/postgres/errs"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"
)

// format_spec is nullable: a quantity may be created before its
// specification is chosen.
func specColumn(quantity domain.Quantity) pgtype.UUID {
	if quantity.FormatSpec == uuid.Nil {
		return pgtype.UUID{Status: pgtype.Null}
	}
	return pgtype.UUID{Bytes: quantity.FormatSpec, Status: pgtype.Present}
}

func CreateQuantity(ctx context.Context, conn kpool.Queryer, quantity domain.Quantity) (domain.Quantity, error) {
	if err := domain.ValidateName(quantity.Name); err != nil {
		return domain.Quantity{}, err
	}
	quantity.UUID = OrNew(quantity.UUID)

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "quantity" ("uuid", "name", "entity", "format_spec")
		VALUES ($1, $2, $3, $4)
		`,
		quantity.UUID.String(), quantity.Name,
		quantity.Entity.String(), specColumn(quantity),
	); err != nil {
		return domain.Quantity{}, errs.Translate(err, "quantity", quantity.Name)
	}
	return quantity, nil
}

func UpsertQuantity(ctx context.Context, conn kpool.Queryer, quantity domain.Quantity) (domain.Quantity, error) {
	if err := domain.ValidateName(quantity.Name); err != nil {
		return domain.Quantity{}, err
	}
	quantity.UUID = OrNew(quantity.UUID)

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "quantity" ("uuid", "name", "entity", "format_spec")
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ("uuid") DO UPDATE SET
			"name" = EXCLUDED."name",
			"entity" = EXCLUDED."entity",
			"format_spec" = EXCLUDED."format_spec"
		`,
		quantity.UUID.String(), quantity.Name,
		quantity.Entity.String(), specColumn(quantity),
	); err != nil {
		return domain.Quantity{}, errs.Translate(err, "quantity", quantity.Name)
	}
	return quantity, nil
}

func scanQuantity(row interface{ Scan(...interface{}) error }) (domain.Quantity, error) {
	var quantity domain.Quantity
	var id, entity string
	var spec pgtype.UUID
	if err := row.Scan(&id, &quantity.Name, &entity, &spec); err != nil {
		return domain.Quantity{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Quantity{}, err
	}
	quantity.UUID = parsed
	if quantity.Entity, err = uuid.Parse(entity); err != nil {
		return domain.Quantity{}, err
	}
	if owner := FromPgUUID(spec); owner != nil {
		quantity.FormatSpec = *owner
	}
	return quantity, nil
}

func quantityList(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]domain.Quantity, error) {
	quantities := []domain.Quantity{}
	for rows.Next() {
		quantity, err := scanQuantity(rows)
		if err != nil {
			return nil, err
		}
		quantities = append(quantities, quantity)
	}
	return quantities, rows.Err()
}

func GetQuantities(ctx context.Context, conn kpool.Queryer, uuids []uuid.UUID) (map[uuid.UUID]domain.Quantity, error) {
	found := map[uuid.UUID]domain.Quantity{}
	if len(uuids) == 0 {
		return found, nil
	}

	rows, err := conn.Query(
		ctx,
		`SELECT "uuid", "name", "entity", "format_spec"
		FROM "quantity" WHERE "uuid" = any($1::uuid[])`,
		slices.Map(uuids, func(id uuid.UUID) string { return id.String() }),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quantities, err := quantityList(rows)
	if err != nil {
		return nil, err
	}
	for _, quantity := range quantities {
		found[quantity.UUID] = quantity
	}
	return found, nil
}

func GetQuantityByName(ctx context.Context, conn kpool.Queryer, entity uuid.UUID, name string) (domain.Quantity, error) {
	quantity, err := scanQuantity(conn.QueryRow(
		ctx,
		`SELECT "uuid", "name", "entity", "format_spec"
		FROM "quantity" WHERE "entity" = $1 AND "name" = $2`,
		entity.String(), name,
	))
	if err != nil {
		return domain.Quantity{}, errs.Translate(err, "quantity", name)
	}
	return quantity, nil
}

func QuantitiesOfEntity(ctx context.Context, conn kpool.Queryer, entity uuid.UUID) ([]domain.Quantity, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT "uuid", "name", "entity", "format_spec"
		FROM "quantity" WHERE "entity" = $1 ORDER BY "name"`,
		entity.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return quantityList(rows)
}

func ListQuantities(ctx context.Context, conn kpool.Queryer) ([]domain.Quantity, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT "uuid", "name", "entity", "format_spec"
		FROM "quantity" ORDER BY "name", "uuid"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return quantityList(rows)
}

func DeleteQuantity(ctx context.Context, conn kpool.Queryer, id uuid.UUID) error {
	tag, err := conn.Exec(
		ctx, `DELETE FROM "quantity" WHERE "uuid" = $1`, id.String(),
	)
	if err != nil {
		return errs.Translate(err, "quantity", id.String())
	}
	if tag.RowsAffected() == 0 {
		return errs.Missing{Table: "quantity", Identity: id.String()}
	}
	return nil
}
