package internal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/db/postgres/errs"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"
)

func CreateSpec(ctx context.Context, conn kpool.Queryer, spec domain.FormatSpecification) (domain.FormatSpecification, error) {
	spec.UUID = OrNew(spec.UUID)

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "format_specification" (
			"uuid", "document_ref", "title",
			"doc_file_name", "doc_mime_type", "file_mime_type", "doc_file"
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
		spec.UUID.String(), spec.DocumentRef, spec.Title,
		spec.DocFileName, spec.DocMimeType, spec.FileMimeType,
		string(spec.DocFile),
	); err != nil {
		return domain.FormatSpecification{}, errs.Translate(
			err, "format_specification", spec.DocumentRef,
		)
	}
	return spec, nil
}

// UpsertSpec is CreateSpec overwriting an existing record with the same
// uuid. Used by the archive import, where a document may re-state records
// already in the store. document_ref is fixed at creation and stays as
// stored; the stored payload ref survives a re-statement without one.
func UpsertSpec(ctx context.Context, conn kpool.Queryer, spec domain.FormatSpecification) (domain.FormatSpecification, error) {
	spec.UUID = OrNew(spec.UUID)

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "format_specification" (
			"uuid", "document_ref", "title",
			"doc_file_name", "doc_mime_type", "file_mime_type", "doc_file"
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ("uuid") DO UPDATE SET
			"title" = EXCLUDED."title",
			"doc_file_name" = EXCLUDED."doc_file_name",
			"doc_mime_type" = EXCLUDED."doc_mime_type",
			"file_mime_type" = EXCLUDED."file_mime_type",
			"doc_file" = COALESCE(
				NULLIF(EXCLUDED."doc_file", ''), "format_specification"."doc_file"
			)
		`,
		spec.UUID.String(), spec.DocumentRef, spec.Title,
		spec.DocFileName, spec.DocMimeType, spec.FileMimeType,
		string(spec.DocFile),
	); err != nil {
		return domain.FormatSpecification{}, errs.Translate(
			err, "format_specification", spec.DocumentRef,
		)
	}
	return spec, nil
}

const specColumns = `
	"uuid", "document_ref", "title",
	"doc_file_name", "doc_mime_type", "file_mime_type", "doc_file"
`

func scanSpec(row interface{ Scan(...interface{}) error }) (domain.FormatSpecification, error) {
	var spec domain.FormatSpecification
	var id, docFile string
	if err := row.Scan(
		&id, &spec.DocumentRef, &spec.Title,
		&spec.DocFileName, &spec.DocMimeType, &spec.FileMimeType, &docFile,
	); err != nil {
		return domain.FormatSpecification{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.FormatSpecification{}, err
	}
	spec.UUID = parsed
	spec.DocFile = domain.StorageRef(docFile)
	return spec, nil
}

func GetSpecs(ctx context.Context, conn kpool.Queryer, uuids []uuid.UUID) (map[uuid.UUID]domain.FormatSpecification, error) {
	found := map[uuid.UUID]domain.FormatSpecification{}
	if len(uuids) == 0 {
		return found, nil
	}

	rows, err := conn.Query(
		ctx,
		`SELECT `+specColumns+`
		FROM "format_specification" WHERE "uuid" = any($1::uuid[])`,
		slices.Map(uuids, func(id uuid.UUID) string { return id.String() }),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		spec, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		found[spec.UUID] = spec
	}
	return found, rows.Err()
}

func GetSpecByDocumentRef(ctx context.Context, conn kpool.Queryer, documentRef string) (domain.FormatSpecification, error) {
	spec, err := scanSpec(conn.QueryRow(
		ctx,
		`SELECT `+specColumns+`
		FROM "format_specification" WHERE "document_ref" = $1`,
		documentRef,
	))
	if err != nil {
		return domain.FormatSpecification{}, errs.Translate(
			err, "format_specification", documentRef,
		)
	}
	return spec, nil
}

func ListSpecs(ctx context.Context, conn kpool.Queryer) ([]domain.FormatSpecification, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT `+specColumns+`
		FROM "format_specification" ORDER BY "document_ref"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := []domain.FormatSpecification{}
	for rows.Next() {
		spec, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

func DeleteSpec(ctx context.Context, conn kpool.Queryer, id uuid.UUID) error {
	tag, err := conn.Exec(
		ctx, `DELETE FROM "format_specification" WHERE "uuid" = $1`, id.String(),
	)
	if err != nil {
		return errs.Translate(err, "format_specification", id.String())
	}
	if tag.RowsAffected() == 0 {
		return errs.Missing{Table: "format_specification", Identity: id.String()}
	}
	return nil
}
