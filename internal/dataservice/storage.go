package dataservice

import (
	"context"
	"fmt"
	"time"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
)

// buildStorageDefinition starts a brand-new STORAGE object's definition
// around a single dataItem's first incarnation and copy (spec.md §4.F
// step 4, create path).
func buildStorageDefinition(dataItem, storageKey, storagePath, format string, now time.Time) metadata.StorageDefinition {
	return metadata.StorageDefinition{
		DataItems: map[string]*metadata.StorageItem{
			dataItem: {
				Incarnations: []metadata.Incarnation{
					{
						IncarnationIndex:     0,
						IncarnationTimestamp: now,
						IncarnationStatus:    metadata.IncarnationAvailable,
						Copies: []metadata.Copy{
							{
								StorageKey:    storageKey,
								StoragePath:   storagePath,
								StorageFormat: format,
								CopyTimestamp: now,
								CopyStatus:    metadata.CopyAvailable,
							},
						},
					},
				},
			},
		},
	}
}

// appendStorageItem adds a new dataItem entry to an existing STORAGE
// object's definition (spec.md §4.F step 4, update path). The prior
// entries are preserved untouched.
func appendStorageItem(prior metadata.StorageDefinition, dataItem, storageKey, storagePath, format string, now time.Time) metadata.StorageDefinition {
	next := metadata.StorageDefinition{DataItems: make(map[string]*metadata.StorageItem, len(prior.DataItems)+1)}
	for k, v := range prior.DataItems {
		next.DataItems[k] = v
	}
	next.DataItems[dataItem] = &metadata.StorageItem{
		Incarnations: []metadata.Incarnation{
			{
				IncarnationIndex:     0,
				IncarnationTimestamp: now,
				IncarnationStatus:    metadata.IncarnationAvailable,
				Copies: []metadata.Copy{
					{
						StorageKey:    storageKey,
						StoragePath:   storagePath,
						StorageFormat: format,
						CopyTimestamp: now,
						CopyStatus:    metadata.CopyAvailable,
					},
				},
			},
		},
	}
	return next
}

// commitNewStorage saves a brand-new STORAGE object and returns a pinned
// selector onto it, suitable for a DATA/FILE's StorageID field.
func (s *Service) commitNewStorage(ctx context.Context, tenant string, def metadata.StorageDefinition) (metadata.TagSelector, error) {
	id := s.db.PreallocateID()
	objDef := metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeStorage, Storage: &def}
	header, err := s.db.SaveNewObject(ctx, tenant, metadata.ObjectTypeStorage, id, objDef, nil)
	if err != nil {
		return metadata.TagSelector{}, fmt.Errorf("dataservice: commit new storage object: %w", err)
	}
	return metadata.SelectorFor(header), nil
}

// commitStorageUpdate saves a new version of an existing STORAGE object
// carrying def, and returns a pinned selector onto the new version.
func (s *Service) commitStorageUpdate(ctx context.Context, tenant string, priorSel metadata.TagSelector, def metadata.StorageDefinition, attrs map[string]*metadata.Value) (metadata.TagSelector, error) {
	objDef := metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeStorage, Storage: &def}
	header, err := s.db.SaveNewVersion(ctx, tenant, metadata.ObjectTypeStorage, priorSel.ObjectID, objDef, attrs)
	if err != nil {
		return metadata.TagSelector{}, fmt.Errorf("dataservice: commit storage update: %w", err)
	}
	return metadata.SelectorFor(header), nil
}

// loadStorage resolves a STORAGE selector to its Tag.
func (s *Service) loadStorage(ctx context.Context, tenant string, sel metadata.TagSelector) (*metadata.Tag, error) {
	tag, err := s.db.LoadObject(ctx, tenant, metadata.ObjectTypeStorage, sel.ObjectID, sel)
	if err != nil {
		return nil, err
	}
	if tag.Definition.Storage == nil {
		return nil, &metadb.Error{Kind: metadb.KindInternal, Msg: "storage object has no Storage definition"}
	}
	return tag, nil
}

// firstAvailableCopy returns the first available copy of dataItem within
// storage, or NOT_FOUND if none exists (spec.md §3
// invariant 9, §4.F readDataset/readFile step 1).
func firstAvailableCopy(storage *metadata.StorageDefinition, dataItem string) (metadata.Copy, error) {
	item, ok := storage.DataItems[dataItem]
	if !ok {
		return metadata.Copy{}, &metadb.Error{Kind: metadb.KindNotFound, Msg: fmt.Sprintf("dataItem %q not present in storage object", dataItem)}
	}
	cp, ok := item.FirstAvailableCopy()
	if !ok {
		return metadata.Copy{}, &metadb.Error{Kind: metadb.KindNotFound, Msg: fmt.Sprintf("dataItem %q has no available copy", dataItem)}
	}
	return cp, nil
}

// markCopyExpunged marks the copies of dataItem's latest incarnation, and
// that incarnation itself, as EXPUNGED and saves a new
// STORAGE version, best-effort and detached from the caller's context
// (spec.md §4.F step 6: "if the second commit fails, mark the storage
// copy EXPUNGED asynchronously").
func (s *Service) markCopyExpunged(tenant string, storageSel metadata.TagSelector, dataItem string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tag, err := s.loadStorage(ctx, tenant, metadata.TagSelector{ObjectType: metadata.ObjectTypeStorage, ObjectID: storageSel.ObjectID, LatestObject: true, LatestTag: true})
		if err != nil {
			s.log.Error().Err(err).Str("dataItem", dataItem).Msg("expunge: load storage failed")
			return
		}
		next := metadata.StorageDefinition{DataItems: make(map[string]*metadata.StorageItem, len(tag.Definition.Storage.DataItems))}
		for k, v := range tag.Definition.Storage.DataItems {
			next.DataItems[k] = v
		}
		item, ok := next.DataItems[dataItem]
		if !ok || len(item.Incarnations) == 0 {
			return
		}
		updated := *item
		lastIdx := len(updated.Incarnations) - 1
		updated.Incarnations = append([]metadata.Incarnation(nil), updated.Incarnations...)
		updated.Incarnations[lastIdx].IncarnationStatus = metadata.IncarnationExpunged
		copies := append([]metadata.Copy(nil), updated.Incarnations[lastIdx].Copies...)
		for i := range copies {
			copies[i].CopyStatus = metadata.CopyExpunged
		}
		updated.Incarnations[lastIdx].Copies = copies
		next.DataItems[dataItem] = &updated

		if _, err := s.commitStorageUpdate(ctx, tenant, metadata.SelectorFor(tag.Header), next, tag.Attrs); err != nil {
			s.log.Error().Err(err).Str("dataItem", dataItem).Msg("expunge: commit storage update failed")
		}
	}()
}
