package internal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/db/postgres/errs"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"
)

// MissingDataFiles reports which of the uuids have no data file record.
func MissingDataFiles(ctx context.Context, conn kpool.Queryer, uuids []uuid.UUID) ([]uuid.UUID, error) {
	if len(uuids) == 0 {
		return nil, nil
	}

	rows, err := conn.Query(
		ctx,
		`SELECT "uuid" FROM "data_file" WHERE "uuid" = any($1::uuid[])`,
		slices.Map(uuids, func(id uuid.UUID) string { return id.String() }),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := map[uuid.UUID]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		known[parsed] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	missing := []uuid.UUID{}
	for _, id := range uuids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// CreateRelease inserts the release record and attaches the initial
// members. Unknown member uuids are batched into one domain.Problems;
// run it inside a transaction so a failed batch leaves nothing behind.
func CreateRelease(ctx context.Context, conn kpool.Queryer, release domain.Release) (domain.Release, error) {
	if err := domain.ValidateTag(release.Tag); err != nil {
		return domain.Release{}, err
	}
	if release.RelDate.IsZero() {
		release.RelDate = time.Now().UTC()
	}

	missing, err := MissingDataFiles(ctx, conn, release.DataFiles)
	if err != nil {
		return domain.Release{}, err
	}
	problems := &domain.Problems{}
	for _, id := range missing {
		problems.Addf(`release "%s": no data file %s`, release.Tag, id)
	}
	if err := problems.AsError(); err != nil {
		return domain.Release{}, err
	}

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "release" (
			"tag", "rel_date", "comment",
			"release_document", "release_document_mime_type", "dump_file"
		) VALUES ($1, $2, $3, $4, $5, $6)
		`,
		release.Tag, release.RelDate, release.Comment,
		string(release.Document), release.DocumentMime, string(release.DumpFile),
	); err != nil {
		return domain.Release{}, errs.Translate(err, "release", release.Tag)
	}

	for _, member := range release.DataFiles {
		if err := AttachMember(ctx, conn, release.Tag, member); err != nil {
			return domain.Release{}, err
		}
	}
	return release, nil
}

// UpsertRelease re-states an existing release, replacing its member set.
// UpsertRelease re-states a release and replaces its member set. rel_date
// is fixed at creation and stays as stored on conflict; the stored
// document and dump refs survive a re-statement without them.
func UpsertRelease(ctx context.Context, conn kpool.Queryer, release domain.Release) (domain.Release, error) {
	if err := domain.ValidateTag(release.Tag); err != nil {
		return domain.Release{}, err
	}
	if release.RelDate.IsZero() {
		release.RelDate = time.Now().UTC()
	}

	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "release" (
			"tag", "rel_date", "comment",
			"release_document", "release_document_mime_type", "dump_file"
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ("tag") DO UPDATE SET
			"comment" = EXCLUDED."comment",
			"release_document" = COALESCE(
				NULLIF(EXCLUDED."release_document", ''), "release"."release_document"
			),
			"release_document_mime_type" = EXCLUDED."release_document_mime_type",
			"dump_file" = COALESCE(
				NULLIF(EXCLUDED."dump_file", ''), "release"."dump_file"
			)
		`,
		release.Tag, release.RelDate, release.Comment,
		string(release.Document), release.DocumentMime, string(release.DumpFile),
	); err != nil {
		return domain.Release{}, errs.Translate(err, "release", release.Tag)
	}

	if _, err := conn.Exec(
		ctx, `DELETE FROM "release_data_file" WHERE "tag" = $1`, release.Tag,
	); err != nil {
		return domain.Release{}, errs.Translate(err, "release", release.Tag)
	}
	for _, member := range release.DataFiles {
		if err := AttachMember(ctx, conn, release.Tag, member); err != nil {
			return domain.Release{}, err
		}
	}
	return release, nil
}

const releaseColumns = `
	"tag", "rel_date", "comment",
	"release_document", "release_document_mime_type", "dump_file"
`

func scanRelease(row interface{ Scan(...interface{}) error }) (domain.Release, error) {
	var release domain.Release
	var document, dump string
	if err := row.Scan(
		&release.Tag, &release.RelDate, &release.Comment,
		&document, &release.DocumentMime, &dump,
	); err != nil {
		return domain.Release{}, err
	}
	release.Document = domain.StorageRef(document)
	release.DumpFile = domain.StorageRef(dump)
	return release, nil
}

func membersOf(ctx context.Context, conn kpool.Queryer, tag string) ([]uuid.UUID, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT "data_file" FROM "release_data_file"
		WHERE "tag" = $1 ORDER BY "data_file"`,
		tag,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []uuid.UUID{}
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(member)
		if err != nil {
			return nil, err
		}
		members = append(members, parsed)
	}
	return members, rows.Err()
}

func GetRelease(ctx context.Context, conn kpool.Queryer, tag string) (domain.Release, error) {
	release, err := scanRelease(conn.QueryRow(
		ctx,
		`SELECT `+releaseColumns+` FROM "release" WHERE "tag" = $1`,
		tag,
	))
	if err != nil {
		return domain.Release{}, errs.Translate(err, "release", tag)
	}

	if release.DataFiles, err = membersOf(ctx, conn, tag); err != nil {
		return domain.Release{}, err
	}
	return release, nil
}

func ListReleases(ctx context.Context, conn kpool.Queryer) ([]domain.Release, error) {
	rows, err := conn.Query(
		ctx,
		`SELECT `+releaseColumns+` FROM "release"
		ORDER BY "rel_date" DESC, "tag"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	releases := []domain.Release{}
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for nth := range releases {
		if releases[nth].DataFiles, err = membersOf(ctx, conn, releases[nth].Tag); err != nil {
			return nil, err
		}
	}
	return releases, nil
}

func AttachMember(ctx context.Context, conn kpool.Queryer, tag string, file uuid.UUID) error {
	if _, err := conn.Exec(
		ctx,
		`
		INSERT INTO "release_data_file" ("tag", "data_file")
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
		`,
		tag, file.String(),
	); err != nil {
		return errs.Translate(err, "release_data_file", tag)
	}
	return nil
}

func DetachMember(ctx context.Context, conn kpool.Queryer, tag string, file uuid.UUID) error {
	if _, err := conn.Exec(
		ctx,
		`DELETE FROM "release_data_file" WHERE "tag" = $1 AND "data_file" = $2`,
		tag, file.String(),
	); err != nil {
		return errs.Translate(err, "release_data_file", tag)
	}
	return nil
}

// ResolveRelease finds the member of the release under the named quantity
// of the entity at entityPath. A release is supposed to hold one version
// per quantity; when it holds several the lookup is ambiguous and fails
// with TooMuch.
func ResolveRelease(ctx context.Context, conn kpool.Queryer, tag string, entityPath []string, quantityName string) (domain.DataFile, error) {
	entity, err := ResolvePath(ctx, conn, entityPath)
	if err != nil {
		return domain.DataFile{}, err
	}
	quantity, err := GetQuantityByName(ctx, conn, entity.UUID, quantityName)
	if err != nil {
		return domain.DataFile{}, err
	}

	rows, err := conn.Query(
		ctx,
		`
		SELECT `+dataFileColumns+`
		FROM "data_file"
		INNER JOIN "release_data_file"
			ON "release_data_file"."data_file" = "data_file"."uuid"
		WHERE "release_data_file"."tag" = $1 AND "data_file"."quantity" = $2
		LIMIT 2
		`,
		tag, quantity.UUID.String(),
	)
	if err != nil {
		return domain.DataFile{}, err
	}
	defer rows.Close()

	files, err := dataFileList(rows)
	if err != nil {
		return domain.DataFile{}, err
	}

	identity := tag + "/" + quantityName
	switch len(files) {
	case 0:
		return domain.DataFile{}, errs.Missing{
			Table: "release_data_file", Identity: identity,
		}
	case 1:
		if err := attachLinks(ctx, conn, files); err != nil {
			return domain.DataFile{}, err
		}
		return files[0], nil
	default:
		return domain.DataFile{}, errs.TooMuch{
			Table: "release_data_file", Identity: identity,
		}
	}
}

func SetDumpFile(ctx context.Context, conn kpool.Queryer, tag string, dump domain.StorageRef) error {
	cmdTag, err := conn.Exec(
		ctx,
		`UPDATE "release" SET "dump_file" = $2 WHERE "tag" = $1`,
		tag, string(dump),
	)
	if err != nil {
		return errs.Translate(err, "release", tag)
	}
	if cmdTag.RowsAffected() == 0 {
		return errs.Missing{Table: "release", Identity: tag}
	}
	return nil
}

func DeleteRelease(ctx context.Context, conn kpool.Queryer, tag string) error {
	cmdTag, err := conn.Exec(
		ctx, `DELETE FROM "release" WHERE "tag" = $1`, tag,
	)
	if err != nil {
		return errs.Translate(err, "release", tag)
	}
	if cmdTag.RowsAffected() == 0 {
		return errs.Missing{Table: "release", Identity: tag}
	}
	return nil
}
