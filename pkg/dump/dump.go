// Package dump regenerates the document-only JSON bundle of a release.
//
// The bundle is what release downloads serve: the export document
// filtered to the release, without attachment references. It is derived
// data, so every write path touching a release's membership (creation,
// attach/detach, bulk import) refreshes it here.
package dump

import (
	"bytes"
	"context"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/schema"
	"github.com/ziotom78/instrumentdb/pkg/storage"
)

// Refresh recomputes the bundle of the release named by tag, stores it
// and records its ref on the release row.
func Refresh(
	ctx context.Context,
	archive kdb.ArchiveInterface,
	releases kdb.ReleaseInterface,
	store storage.Store,
	tag string,
) error {
	snapshot, err := archive.Export(ctx, schema.Selection{ReleaseTag: tag})
	if err != nil {
		return err
	}
	doc, _ := schema.Compose(snapshot, schema.Options{NoAttachments: true})

	bundle := bytes.Buffer{}
	if err := schema.EncodeJSON(&bundle, doc); err != nil {
		return err
	}
	ref, err := store.Put(ctx, "release_documents/"+tag+".json", &bundle)
	if err != nil {
		return err
	}
	return releases.SetDumpFile(ctx, tag, ref)
}
