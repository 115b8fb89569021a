// Command instrumentdb-admin runs the maintenance operations that do not
// fit the HTTP API: bulk import and export with payload files, and
// wiping the whole database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ziotom78/instrumentdb/pkg/configs/backend"
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	kpg "github.com/ziotom78/instrumentdb/pkg/db/postgres"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/dump"
	"github.com/ziotom78/instrumentdb/pkg/schema"
	"github.com/ziotom78/instrumentdb/pkg/storage"
	"github.com/ziotom78/instrumentdb/pkg/storage/s3"
)

func main() {
	configPath := flag.String("config-path", "", "backend config path")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	conf, err := backend.LoadBackendConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	ctx := context.Background()
	db, err := kpg.New(ctx, conf.DBURI)
	if err != nil {
		log.Fatalf("can not reach the database: %s", err)
	}
	defer db.Close()
	if err := db.Schema().Upgrade(ctx); err != nil {
		log.Fatalf("can not upgrade the database schema: %s", err)
	}

	store, err := newStore(ctx, conf.Storage)
	if err != nil {
		log.Fatalf("can not open the payload storage: %s", err)
	}

	switch args[0] {
	case "import":
		if len(args) != 2 {
			usage()
		}
		err = runImport(ctx, db, store, args[1])
	case "export":
		opts := schema.Options{}
		sub := flag.NewFlagSet("export", flag.ExitOnError)
		sub.BoolVar(&opts.NoAttachments, "no-attachments", false, "leave payload files out")
		sub.BoolVar(&opts.OnlyTree, "only-tree", false, "entities and quantities only")
		sub.BoolVar(&opts.SkipEmptyEntities, "skip-empty-entities", false, "drop entities without content")
		sub.BoolVar(&opts.SkipEmptyQuantities, "skip-empty-quantities", false, "drop quantities without data files")
		if err := sub.Parse(args[1:]); err != nil {
			usage()
		}
		rest := sub.Args()
		if len(rest) != 1 && len(rest) != 2 {
			usage()
		}
		tag := ""
		if len(rest) == 2 {
			tag = rest[1]
		}
		err = runExport(ctx, db, store, rest[0], tag, opts)
	case "delete-all":
		if len(args) != 2 || args[1] != "--force" {
			log.Fatal("delete-all wipes the whole database; pass --force to confirm")
		}
		err = runDeleteAll(ctx, db)
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s failed: %s", args[0], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: instrumentdb-admin --config-path FILE COMMAND

commands:
  import DOCUMENT          ingest a document and the payload files next to it
  export [FLAGS] OUTDIR [TAG]
                           write a document plus payloads, whole store or one
                           release; flags: --no-attachments --only-tree
                           --skip-empty-entities --skip-empty-quantities
  delete-all --force       wipe every record`)
	os.Exit(2)
}

func newStore(ctx context.Context, conf backend.StorageConfig) (storage.Store, error) {
	switch conf.Kind {
	case "s3":
		return s3.New(ctx, conf.Bucket, s3.WithPrefix(conf.Prefix))
	case "filesystem", "":
		return storage.NewFs(conf.Root)
	}
	return nil, errors.New("unknown storage kind " + conf.Kind)
}

// runImport ingests a document file. Unlike the HTTP endpoint, payload
// files referenced by the document are read from disk, relative to the
// document, and stored before the records land in the database.
func runImport(ctx context.Context, db kdb.InstrumentDatabase, store storage.Store, documentPath string) error {
	source, err := os.Open(documentPath)
	if err != nil {
		return err
	}
	defer source.Close()

	doc, err := schema.Decode(source)
	if err != nil {
		return err
	}
	plan, err := schema.Flatten(doc)
	if err != nil {
		return err
	}

	base := filepath.Dir(documentPath)
	stored := []domain.StorageRef{}
	put := func(relative string, dest string) (domain.StorageRef, error) {
		if relative == "" {
			return "", nil
		}
		payload, err := os.Open(filepath.Join(base, relative))
		if err != nil {
			return "", err
		}
		defer payload.Close()
		ref, err := store.Put(ctx, dest, payload)
		if err == nil {
			stored = append(stored, ref)
		}
		return ref, err
	}
	// the database transaction rolls itself back; stored payloads need
	// explicit cleanup
	cleanup := func() {
		for _, ref := range stored {
			if err := store.Delete(ctx, ref); err != nil {
				log.Printf("can not clean up payload %s: %s", ref, err)
			}
		}
	}

	for i := range plan.Specs {
		s := &plan.Specs[i]
		ref, err := put(s.DocPath, "format_spec/"+s.Spec.UUID.String())
		if err != nil {
			cleanup()
			return err
		}
		s.Spec.DocFile = ref
	}
	for i := range plan.DataFiles {
		d := &plan.DataFiles[i]
		ref, err := put(d.FilePath, "data_files/"+d.File.UUID.String())
		if err != nil {
			cleanup()
			return err
		}
		d.File.FileData = ref
		ref, err = put(d.PlotPath, "plot_files/"+d.File.UUID.String())
		if err != nil {
			cleanup()
			return err
		}
		d.File.PlotFile = ref
	}
	for i := range plan.Releases {
		r := &plan.Releases[i]
		ref, err := put(r.DocPath, "release_documents/"+r.Release.Tag)
		if err != nil {
			cleanup()
			return err
		}
		r.Release.Document = ref
	}

	if err := db.Archive().Import(ctx, plan); err != nil {
		cleanup()
		return err
	}

	// the records are in; imported releases still need their download
	// bundle recomputed
	for _, r := range plan.Releases {
		if err := dump.Refresh(ctx, db.Archive(), db.Releases(), store, r.Release.Tag); err != nil {
			return err
		}
	}
	return nil
}

// runExport writes schema.yaml plus every payload under outDir. An empty
// tag exports the whole store.
func runExport(ctx context.Context, db kdb.InstrumentDatabase, store storage.Store, outDir string, tag string, opts schema.Options) error {
	snapshot, err := db.Archive().Export(ctx, schema.Selection{ReleaseTag: tag})
	if err != nil {
		return err
	}
	doc, attachments := schema.Compose(snapshot, opts)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(outDir, "schema.yaml"))
	if err != nil {
		return err
	}
	defer out.Close()
	if err := schema.EncodeYAML(out, doc); err != nil {
		return err
	}

	for _, attachment := range attachments {
		if err := copyAttachment(ctx, store, outDir, attachment); err != nil {
			return err
		}
	}
	return nil
}

func copyAttachment(ctx context.Context, store storage.Store, outDir string, attachment schema.Attachment) error {
	payload, err := store.Get(ctx, attachment.Ref)
	if err != nil {
		return err
	}
	defer payload.Close()

	dest := filepath.Join(outDir, filepath.FromSlash(attachment.Dest))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, payload)
	return err
}

// runDeleteAll removes every record. Deleting the root entities cascades
// to the whole tree; releases and specifications go separately.
func runDeleteAll(ctx context.Context, db kdb.InstrumentDatabase) error {
	releases, err := db.Releases().List(ctx)
	if err != nil {
		return err
	}
	for _, release := range releases {
		if err := db.Releases().Delete(ctx, release.Tag); err != nil {
			return err
		}
	}

	roots, err := db.Entities().Roots(ctx)
	if err != nil {
		return err
	}
	for _, root := range roots {
		if err := db.Entities().Delete(ctx, root.UUID); err != nil {
			return err
		}
	}

	specs, err := db.Specs().List(ctx)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := db.Specs().Delete(ctx, spec.UUID); err != nil {
			return err
		}
	}
	return nil
}
