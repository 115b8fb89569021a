package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/db/postgres/errs"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"
)

func checkDataFile(file *domain.DataFile) error {
	if err := domain.ValidateMetadata(file.Metadata); err != nil {
		return err
	}
	if !file.PlotFile.Empty() && file.PlotMime == "" {
		return fmt.Errorf(
			"%w: data file %q has a plot payload without its MIME type",
			domain.ErrValidation, file.Name,
		)
	}
	if file.PlotFile.Empty() && file.PlotMime != "" {
		return fmt.Errorf(
			"%w: data file %q has a plot MIME type without a payload",
			domain.ErrValidation, file.Name,
		)
	}

	file.UUID = OrNew(file.UUID)
	if file.UploadDate.IsZero() {
		file.UploadDate = time.Now().UTC()
	}
	return nil
}

func UploadDataFile(ctx context.Context, conn kpool.Queryer, file domain.DataFile) (domain.DataFile, error) {
	if err := checkDataFile(&file); err != nil {
		return domain.DataFile{}, err
	}

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "data_file" (
			"uuid", "name", "upload_date", "metadata", "file_data",
			"quantity", "spec_version", "plot_file", "plot_mime_type", "comment"
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
		file.UUID.String(), file.Name, file.UploadDate, file.Metadata,
		string(file.FileData), file.Quantity.String(), file.SpecVersion,
		string(file.PlotFile), file.PlotMime, file.Comment,
	); err != nil {
		return domain.DataFile{}, errs.Translate(err, "data_file", file.Name)
	}

	file.Dependencies = nil
	file.ReleaseTags = nil
	return file, nil
}

func UpsertDataFile(ctx context.Context, conn kpool.Queryer, file domain.DataFile) (domain.DataFile, error) {
	if err := checkDataFile(&file); err != nil {
		return domain.DataFile{}, err
	}

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "data_file" (
			"uuid", "name", "upload_date", "metadata", "file_data",
			"quantity", "spec_version", "plot_file", "plot_mime_type", "comment"
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ("uuid") DO UPDATE SET
			"name" = EXCLUDED."name",
			"upload_date" = EXCLUDED."upload_date",
			"metadata" = EXCLUDED."metadata",
			"file_data" = COALESCE(
				NULLIF(EXCLUDED."file_data", ''), "data_file"."file_data"
			),
			"quantity" = EXCLUDED."quantity",
			"spec_version" = EXCLUDED."spec_version",
			"plot_file" = COALESCE(
				NULLIF(EXCLUDED."plot_file", ''), "data_file"."plot_file"
			),
			"plot_mime_type" = EXCLUDED."plot_mime_type",
			"comment" = EXCLUDED."comment"
		`,
		file.UUID.String(), file.Name, file.UploadDate, file.Metadata,
		string(file.FileData), file.Quantity.String(), file.SpecVersion,
		string(file.PlotFile), file.PlotMime, file.Comment,
	); err != nil {
		return domain.DataFile{}, errs.Translate(err, "data_file", file.Name)
	}

	file.Dependencies = nil
	file.ReleaseTags = nil
	return file, nil
}

const dataFileColumns = `
	"uuid", "name", "upload_date", "metadata", "file_data",
	"quantity", "spec_version", "plot_file", "plot_mime_type", "comment"
`

// canonical version ordering. The first row per quantity is its
// current version.
const dataFileOrder = `"upload_date" DESC, "name", "uuid"`

func scanDataFile(row interface{ Scan(...interface{}) error }) (domain.DataFile, error) {
	var file domain.DataFile
	var id, fileData, quantity, plotFile string
	if err := row.Scan(
		&id, &file.Name, &file.UploadDate, &file.Metadata, &fileData,
		&quantity, &file.SpecVersion, &plotFile, &file.PlotMime, &file.Comment,
	); err != nil {
		return domain.DataFile{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.DataFile{}, err
	}
	file.UUID = parsed
	if file.Quantity, err = uuid.Parse(quantity); err != nil {
		return domain.DataFile{}, err
	}
	file.FileData = domain.StorageRef(fileData)
	file.PlotFile = domain.StorageRef(plotFile)
	return file, nil
}

func dataFileList(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]domain.DataFile, error) {
	files := []domain.DataFile{}
	for rows.Next() {
		file, err := scanDataFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// attachLinks fills in the dependency sets and release tags of the files,
// with one query per link table.
func attachLinks(ctx context.Context, conn kpool.Queryer, files []domain.DataFile) error {
	if len(files) == 0 {
		return nil
	}
	byId := map[uuid.UUID]int{}
	ids := make([]string, len(files))
	for nth := range files {
		byId[files[nth].UUID] = nth
		ids[nth] = files[nth].UUID.String()
	}

	{
		rows, err := conn.Query(
			ctx,
			`SELECT "owner", "dependency" FROM "data_file_dependency"
			WHERE "owner" = any($1::uuid[])
			ORDER BY "dependency"`,
			ids,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var owner, dependency string
			if err := rows.Scan(&owner, &dependency); err != nil {
				return err
			}
			ownerId, err := uuid.Parse(owner)
			if err != nil {
				return err
			}
			dependencyId, err := uuid.Parse(dependency)
			if err != nil {
				return err
			}
			nth := byId[ownerId]
			files[nth].Dependencies = append(files[nth].Dependencies, dependencyId)
		}
		if err := rows.Err(); err != nil {
			return err
		}
	}

	{
		rows, err := conn.Query(
			ctx,
			`SELECT "data_file", "tag" FROM "release_data_file"
			WHERE "data_file" = any($1::uuid[])
			ORDER BY "tag"`,
			ids,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var member, tag string
			if err := rows.Scan(&member, &tag); err != nil {
				return err
			}
			memberId, err := uuid.Parse(member)
			if err != nil {
				return err
			}
			nth := byId[memberId]
			files[nth].ReleaseTags = append(files[nth].ReleaseTags, tag)
		}
		if err := rows.Err(); err != nil {
			return err
		}
	}

	return nil
}

func GetDataFiles(ctx context.Context, conn kpool.Queryer, uuids []uuid.UUID) (map[uuid.UUID]domain.DataFile, error) {
	found := map[uuid.UUID]domain.DataFile{}
	if len(uuids) == 0 {
		return found, nil
	}

	rows, err := conn.Query(
		ctx,
		`SELECT `+dataFileColumns+`
		FROM "data_file" WHERE "uuid" = any($1::uuid[])`,
		slices.Map(uuids, func(id uuid.UUID) string { return id.String() }),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files, err := dataFileList(rows)
	if err != nil {
		return nil, err
	}
	if err := attachLinks(ctx, conn, files); err != nil {
		return nil, err
	}
	for _, file := range files {
		found[file.UUID] = file
	}
	return found, nil
}

func VersionsOfQuantity(ctx context.Context, conn kpool.Queryer, quantity uuid.UUID) ([]domain.DataFile, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT `+dataFileColumns+`
		FROM "data_file" WHERE "quantity" = $1
		ORDER BY `+dataFileOrder,
		quantity.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files, err := dataFileList(rows)
	if err != nil {
		return nil, err
	}
	if err := attachLinks(ctx, conn, files); err != nil {
		return nil, err
	}
	return files, nil
}

func CurrentVersion(ctx context.Context, conn kpool.Queryer, quantity uuid.UUID) (domain.DataFile, error) {
	file, err := scanDataFile(conn.QueryRow(
		ctx,
		`SELECT `+dataFileColumns+`
		FROM "data_file" WHERE "quantity" = $1
		ORDER BY `+dataFileOrder+`
		LIMIT 1`,
		quantity.String(),
	))
	if err != nil {
		return domain.DataFile{}, errs.Translate(err, "data_file", quantity.String())
	}

	files := []domain.DataFile{file}
	if err := attachLinks(ctx, conn, files); err != nil {
		return domain.DataFile{}, err
	}
	return files[0], nil
}

func AddDependency(ctx context.Context, conn kpool.Queryer, file uuid.UUID, dependency uuid.UUID) error {
	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "data_file_dependency" ("owner", "dependency")
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
		`,
		file.String(), dependency.String(),
	); err != nil {
		return errs.Translate(err, "data_file_dependency", file.String())
	}
	return nil
}

func UpdateDataFile(ctx context.Context, conn kpool.Queryer, id uuid.UUID, metadata *string, comment *string) error {
	if metadata != nil {
		if err := domain.ValidateMetadata(*metadata); err != nil {
			return err
		}
	}

	tag, err := conn.Exec(
		ctx,
		`
		UPDATE "data_file" SET
			"metadata" = coalesce($2, "metadata"),
			"comment" = coalesce($3, "comment")
		WHERE "uuid" = $1
		`,
		id.String(), metadata, comment,
	)
	if err != nil {
		return errs.Translate(err, "data_file", id.String())
	}
	if tag.RowsAffected() == 0 {
		return errs.Missing{Table: "data_file", Identity: id.String()}
	}
	return nil
}

func DeleteDataFile(ctx context.Context, conn kpool.Queryer, id uuid.UUID) error {
	tag, err := conn.Exec(
		ctx, `DELETE FROM "data_file" WHERE "uuid" = $1`, id.String(),
	)
	if err != nil {
		return errs.Translate(err, "data_file", id.String())
	}
	if tag.RowsAffected() == 0 {
		return errs.Missing{Table: "data_file", Identity: id.String()}
	}
	return nil
}
