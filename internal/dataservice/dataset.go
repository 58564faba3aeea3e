package dataservice

import (
	"context"
	"fmt"
	"io"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/objectstore"
	"github.com/tracplatform/trac/internal/pipeline"
)

// CreateDataset implements spec.md §4.F's create path for a DATA object.
func (s *Service) CreateDataset(ctx context.Context, req DatasetWriteRequest, content io.Reader) (metadata.TagHeader, error) {
	if req.Prior != nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "createDataset must not set Prior"}
	}
	if err := s.validateDatasetHeader(req); err != nil {
		return metadata.TagHeader{}, err
	}

	def := metadata.DataDefinition{Schema: req.Schema, SchemaID: req.SchemaID, Parts: map[string]*metadata.Part{}}
	objectID := s.db.PreallocateID()
	dataItem, err := metadata.DataItemForTableDelta(objectID, 0, 0)
	if err != nil {
		return metadata.TagHeader{}, fmt.Errorf("dataservice: derive dataItem: %w", err)
	}

	storageKey := req.StorageKey
	storagePath := objectstore.TenantPrefix(req.Tenant, dataItem)
	now := s.clock()
	storageDef := buildStorageDefinition(dataItem, storageKey, storagePath, s.defaultStorageFormat, now)

	bytesRead, err := s.streamDataset(ctx, req, def, storageKey, storagePath, content)
	if err != nil {
		return metadata.TagHeader{}, err
	}
	_ = bytesRead

	storageSel, err := s.commitNewStorage(ctx, req.Tenant, storageDef)
	if err != nil {
		return metadata.TagHeader{}, err
	}

	def.StorageID = storageSel
	def.Parts["default"] = &metadata.Part{
		PartKey: "default",
		Snap: metadata.Snap{
			SnapIndex: 0,
			Deltas:    []metadata.Delta{{DeltaIndex: 0, DataItem: dataItem}},
		},
	}

	attrs, ok, attrName := metadata.ApplyTagUpdates(nil, req.TagUpdates)
	if !ok {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("cannot replace attr %q: not present", attrName)}
	}

	header, err := s.db.SaveNewObject(ctx, req.Tenant, metadata.ObjectTypeData, objectID, metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeData, Data: &def}, attrs)
	if err != nil {
		s.markCopyExpunged(req.Tenant, storageSel, dataItem)
		return metadata.TagHeader{}, err
	}
	return header, nil
}

// UpdateDataset implements spec.md §4.F's update path for a DATA object.
func (s *Service) UpdateDataset(ctx context.Context, req DatasetWriteRequest, content io.Reader) (metadata.TagHeader, error) {
	if req.Prior == nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "updateDataset requires Prior"}
	}
	if err := req.Prior.Validate(); err != nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}
	if err := s.validateDatasetHeader(req); err != nil {
		return metadata.TagHeader{}, err
	}

	priorTag, err := s.db.LoadObject(ctx, req.Tenant, metadata.ObjectTypeData, req.Prior.ObjectID, *req.Prior)
	if err != nil {
		return metadata.TagHeader{}, err
	}
	if priorTag.Definition.Data == nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindWrongType, Msg: "priorVersion does not name a DATA object"}
	}

	nextDef := metadata.DataDefinition{Schema: req.Schema, SchemaID: req.SchemaID}
	if err := s.checkDatasetSchemaUpdateCompatible(ctx, req.Tenant, *priorTag.Definition.Data, nextDef); err != nil {
		return metadata.TagHeader{}, err
	}

	objectID := req.Prior.ObjectID
	part, ok := priorTag.Definition.Data.Parts["default"]
	var snapIndex, deltaIndex int64
	var deltas []metadata.Delta
	if ok {
		snapIndex = part.Snap.SnapIndex
		deltaIndex = int64(len(part.Snap.Deltas))
		deltas = append(deltas, part.Snap.Deltas...)
	}
	dataItem, err := metadata.DataItemForTableDelta(objectID, snapIndex, deltaIndex)
	if err != nil {
		return metadata.TagHeader{}, fmt.Errorf("dataservice: derive dataItem: %w", err)
	}
	deltas = append(deltas, metadata.Delta{DeltaIndex: deltaIndex, DataItem: dataItem})

	storageKey := req.StorageKey
	storagePath := objectstore.TenantPrefix(req.Tenant, dataItem)
	now := s.clock()

	priorStorageTag, err := s.loadStorage(ctx, req.Tenant, priorTag.Definition.Data.StorageID)
	if err != nil {
		return metadata.TagHeader{}, err
	}
	storageDef := appendStorageItem(*priorStorageTag.Definition.Storage, dataItem, storageKey, storagePath, s.defaultStorageFormat, now)

	bytesRead, err := s.streamDataset(ctx, req, nextDef, storageKey, storagePath, content)
	if err != nil {
		return metadata.TagHeader{}, err
	}
	_ = bytesRead

	storageSel, err := s.commitStorageUpdate(ctx, req.Tenant, metadata.SelectorFor(priorStorageTag.Header), storageDef, priorStorageTag.Attrs)
	if err != nil {
		return metadata.TagHeader{}, err
	}

	nextDef.StorageID = storageSel
	nextDef.Parts = map[string]*metadata.Part{
		"default": {PartKey: "default", Snap: metadata.Snap{SnapIndex: snapIndex, Deltas: deltas}},
	}

	attrs, ok, attrName := metadata.ApplyTagUpdates(priorTag.Attrs, req.TagUpdates)
	if !ok {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("cannot replace attr %q: not present", attrName)}
	}

	header, err := s.db.SaveNewVersion(ctx, req.Tenant, metadata.ObjectTypeData, objectID, metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeData, Data: &nextDef}, attrs)
	if err != nil {
		s.markCopyExpunged(req.Tenant, storageSel, dataItem)
		return metadata.TagHeader{}, err
	}
	return header, nil
}

// validateDatasetHeader enforces spec.md §4.F step 1's header checks that
// are independent of create vs update.
func (s *Service) validateDatasetHeader(req DatasetWriteRequest) error {
	if req.Tenant == "" {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "tenant must not be empty"}
	}
	if err := metadata.ValidateTagUpdates(req.TagUpdates); err != nil {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}
	if (req.Schema != nil) == (req.SchemaID != nil) {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "exactly one of Schema or SchemaID must be set"}
	}
	if req.SchemaID != nil && !req.SchemaID.IsPinned() {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "schemaId must pin an explicit objectVersion"}
	}
	if _, err := s.codecs.Resolve(req.MimeType); err != nil {
		return err
	}
	return nil
}

// streamDataset runs the write-path pipeline (spec.md §4.F step 5):
// decode req.MimeType's wire format against the dataset's effective
// schema, re-encode in the canonical storage format, write to the
// resolved store at storagePath.
func (s *Service) streamDataset(ctx context.Context, req DatasetWriteRequest, def metadata.DataDefinition, storageKey, storagePath string, content io.Reader) (int64, error) {
	wireCodec, err := s.codecs.Resolve(req.MimeType)
	if err != nil {
		return 0, err
	}
	storageCodec, err := s.codecs.Resolve(s.defaultStorageFormat)
	if err != nil {
		return 0, fmt.Errorf("dataservice: resolve storage codec: %w", err)
	}
	schema, err := s.resolveEffectiveSchema(ctx, req.Tenant, def)
	if err != nil {
		return 0, err
	}

	store, err := s.stores.Resolve(storageKey)
	if err != nil {
		return 0, fmt.Errorf("dataservice: %w", err)
	}
	writer, err := store.Writer(ctx, storagePath)
	if err != nil {
		return 0, fmt.Errorf("dataservice: open store writer: %w", err)
	}

	result, err := pipeline.Upload(ctx, content, wireCodec, schema, storageCodec, schema, writer, req.DeclaredSize)
	if err != nil {
		return 0, err
	}
	return result.BytesRead, nil
}
