// Package archive runs bulk imports and exports against the database.
//
// An import is one transaction in three passes: records, then dependency
// links, then releases. References are pre-checked against the plan and
// the store together, so a document may freely re-state existing records
// or point forward inside itself; any reference resolving to nothing is
// reported in a batch and the store is left untouched.
package archive

import (
	"context"
	"errors"

	"github.com/google/uuid"

	kpgintr "github.com/ziotom78/instrumentdb/pkg/db/postgres/internal"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/schema"
)

type archivePG struct { // implements db.ArchiveInterface
	pool kpool.Pool
}

func New(pool kpool.Pool) *archivePG {
	return &archivePG{pool: pool}
}

func (a *archivePG) Import(ctx context.Context, plan *schema.Plan) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	resolved, err := resolveRefs(ctx, tx, plan)
	if err != nil {
		return err
	}

	// pass 1: records, in plan order (parents precede children)
	for _, s := range plan.Specs {
		if _, err := kpgintr.UpsertSpec(ctx, tx, s.Spec); err != nil {
			return err
		}
	}
	for _, entity := range plan.Entities {
		if _, err := kpgintr.UpsertEntity(ctx, tx, entity); err != nil {
			return err
		}
	}
	for _, q := range plan.Quantities {
		quantity := q.Quantity
		quantity.Entity = resolved.entities[q.EntityRef]
		quantity.FormatSpec = resolved.specs[q.SpecRef]
		if _, err := kpgintr.UpsertQuantity(ctx, tx, quantity); err != nil {
			return err
		}
	}
	for _, d := range plan.DataFiles {
		file := d.File
		file.Quantity = resolved.quantities[d.QuantityRef]
		if _, err := kpgintr.UpsertDataFile(ctx, tx, file); err != nil {
			return err
		}
	}

	// pass 2: dependency links, now that both ends exist
	for _, link := range plan.Dependencies {
		if err := kpgintr.AddDependency(ctx, tx, link.Owner, link.Dependency); err != nil {
			return err
		}
	}

	// pass 3: releases and their member sets
	for _, r := range plan.Releases {
		if _, err := kpgintr.UpsertRelease(ctx, tx, r.Release); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// resolution maps the raw reference strings of a plan to record uuids.
type resolution struct {
	entities   map[string]uuid.UUID
	specs      map[string]uuid.UUID
	quantities map[string]uuid.UUID
}

// resolveRefs checks every reference of the plan against the plan itself
// and the store, and batches all the dangling ones into one error.
func resolveRefs(ctx context.Context, conn kpool.Queryer, plan *schema.Plan) (*resolution, error) {
	problems := &domain.Problems{}
	resolved := &resolution{
		entities:   map[string]uuid.UUID{},
		specs:      map[string]uuid.UUID{},
		quantities: map[string]uuid.UUID{},
	}

	plannedEntities := map[uuid.UUID]bool{}
	for _, entity := range plan.Entities {
		plannedEntities[entity.UUID] = true
	}
	plannedQuantities := map[uuid.UUID]bool{}
	for _, q := range plan.Quantities {
		plannedQuantities[q.Quantity.UUID] = true
	}
	plannedFiles := map[uuid.UUID]bool{}
	for _, d := range plan.DataFiles {
		plannedFiles[d.File.UUID] = true
	}
	specsByUUID := map[uuid.UUID]bool{}
	specsByRef := map[string]uuid.UUID{}
	for _, s := range plan.Specs {
		specsByUUID[s.Spec.UUID] = true
		specsByRef[s.Spec.DocumentRef] = s.Spec.UUID
	}

	for _, q := range plan.Quantities {
		ref := q.EntityRef
		if _, done := resolved.entities[ref]; done {
			continue
		}
		id, err := uuid.Parse(ref)
		if err != nil {
			problems.Addf(`quantity "%s": bad entity reference %q`, q.Quantity.Name, ref)
			continue
		}
		if !plannedEntities[id] {
			found, err := kpgintr.GetEntities(ctx, conn, []uuid.UUID{id})
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				problems.Addf(`quantity "%s": no entity %s`, q.Quantity.Name, ref)
				continue
			}
		}
		resolved.entities[ref] = id
	}

	for _, q := range plan.Quantities {
		ref := q.SpecRef
		if ref == "" {
			continue
		}
		if _, done := resolved.specs[ref]; done {
			continue
		}
		if id, err := uuid.Parse(ref); err == nil {
			if !specsByUUID[id] {
				found, err := kpgintr.GetSpecs(ctx, conn, []uuid.UUID{id})
				if err != nil {
					return nil, err
				}
				if len(found) == 0 {
					problems.Addf(
						`quantity "%s": no format specification %s`,
						q.Quantity.Name, ref,
					)
					continue
				}
			}
			resolved.specs[ref] = id
			continue
		}

		// not a uuid: a document_ref
		if id, planned := specsByRef[ref]; planned {
			resolved.specs[ref] = id
			continue
		}
		found, err := kpgintr.GetSpecByDocumentRef(ctx, conn, ref)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				problems.Addf(
					`quantity "%s": no format specification %q`,
					q.Quantity.Name, ref,
				)
				continue
			}
			return nil, err
		}
		resolved.specs[ref] = found.UUID
	}

	for _, d := range plan.DataFiles {
		ref := d.QuantityRef
		if _, done := resolved.quantities[ref]; done {
			continue
		}
		id, err := uuid.Parse(ref)
		if err != nil {
			problems.Addf(`data file "%s": bad quantity reference %q`, d.File.Name, ref)
			continue
		}
		if !plannedQuantities[id] {
			found, err := kpgintr.GetQuantities(ctx, conn, []uuid.UUID{id})
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				problems.Addf(`data file "%s": no quantity %s`, d.File.Name, ref)
				continue
			}
		}
		resolved.quantities[ref] = id
	}

	// dependency targets and release members may live outside the plan
	external := []uuid.UUID{}
	for _, link := range plan.Dependencies {
		if !plannedFiles[link.Dependency] {
			external = append(external, link.Dependency)
		}
	}
	for _, r := range plan.Releases {
		for _, member := range r.Release.DataFiles {
			if !plannedFiles[member] {
				external = append(external, member)
			}
		}
	}
	missing, err := kpgintr.MissingDataFiles(ctx, conn, external)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		problems.Addf("no data file %s", id)
	}

	if err := problems.AsError(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (a *archivePG) Export(ctx context.Context, selection schema.Selection) (*schema.Snapshot, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	snap := &schema.Snapshot{}
	if snap.Specs, err = kpgintr.ListSpecs(ctx, conn); err != nil {
		return nil, err
	}
	if snap.Entities, err = kpgintr.ListEntities(ctx, conn); err != nil {
		return nil, err
	}
	if snap.Quantities, err = kpgintr.ListQuantities(ctx, conn); err != nil {
		return nil, err
	}

	if selection.ReleaseTag == "" {
		if snap.DataFiles, err = exportAllDataFiles(ctx, conn, snap.Quantities); err != nil {
			return nil, err
		}
		if snap.Releases, err = kpgintr.ListReleases(ctx, conn); err != nil {
			return nil, err
		}
		return snap, nil
	}

	release, err := kpgintr.GetRelease(ctx, conn, selection.ReleaseTag)
	if err != nil {
		return nil, err
	}
	members, err := kpgintr.GetDataFiles(ctx, conn, release.DataFiles)
	if err != nil {
		return nil, err
	}
	for _, file := range members {
		// tags of other releases would dangle in a filtered document
		file.ReleaseTags = nil
		snap.DataFiles = append(snap.DataFiles, file)
	}
	domain.SortDataFiles(snap.DataFiles)
	snap.Releases = []domain.Release{release}
	return snap, nil
}

func exportAllDataFiles(ctx context.Context, conn kpool.Queryer, quantities []domain.Quantity) ([]domain.DataFile, error) {
	files := []domain.DataFile{}
	for _, quantity := range quantities {
		versions, err := kpgintr.VersionsOfQuantity(ctx, conn, quantity.UUID)
		if err != nil {
			return nil, err
		}
		files = append(files, versions...)
	}
	return files, nil
}
