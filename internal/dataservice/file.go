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

// CreateFile implements spec.md §4.F's create path for a FILE object. A
// FILE's payload is opaque bytes, so no codec decode/re-encode happens —
// content is copied byte-exact into the object store.
func (s *Service) CreateFile(ctx context.Context, req FileWriteRequest, content io.Reader) (metadata.TagHeader, error) {
	if req.Prior != nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "createFile must not set Prior"}
	}
	if err := s.validateFileHeader(req); err != nil {
		return metadata.TagHeader{}, err
	}

	objectID := s.db.PreallocateID()
	dataItem := metadata.DataItemForFileVersion(objectID, 1)
	storagePath := objectstore.TenantPrefix(req.Tenant, dataItem)
	now := s.clock()
	storageDef := buildStorageDefinition(dataItem, req.StorageKey, storagePath, req.MimeType, now)

	size, err := s.streamFile(ctx, req.StorageKey, storagePath, content, req.DeclaredSize)
	if err != nil {
		return metadata.TagHeader{}, err
	}

	storageSel, err := s.commitNewStorage(ctx, req.Tenant, storageDef)
	if err != nil {
		return metadata.TagHeader{}, err
	}

	def := metadata.FileDefinition{
		Name:      req.Name,
		Extension: req.Extension,
		MimeType:  req.MimeType,
		Size:      size,
		StorageID: storageSel,
		DataItem:  dataItem,
	}

	attrs, ok, attrName := metadata.ApplyTagUpdates(nil, req.TagUpdates)
	if !ok {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("cannot replace attr %q: not present", attrName)}
	}

	header, err := s.db.SaveNewObject(ctx, req.Tenant, metadata.ObjectTypeFile, objectID, metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeFile, File: &def}, attrs)
	if err != nil {
		s.markCopyExpunged(req.Tenant, storageSel, dataItem)
		return metadata.TagHeader{}, err
	}
	return header, nil
}

// UpdateFile implements spec.md §4.F's update path for a FILE object.
func (s *Service) UpdateFile(ctx context.Context, req FileWriteRequest, content io.Reader) (metadata.TagHeader, error) {
	if req.Prior == nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "updateFile requires Prior"}
	}
	if err := req.Prior.Validate(); err != nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}
	if err := s.validateFileHeader(req); err != nil {
		return metadata.TagHeader{}, err
	}

	priorTag, err := s.db.LoadObject(ctx, req.Tenant, metadata.ObjectTypeFile, req.Prior.ObjectID, *req.Prior)
	if err != nil {
		return metadata.TagHeader{}, err
	}
	if priorTag.Definition.File == nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindWrongType, Msg: "priorVersion does not name a FILE object"}
	}

	ext := req.Extension
	if ext == "" {
		ext = priorTag.Definition.File.Extension
	}
	if err := checkFileExtensionUpdateCompatible(priorTag.Definition.File.Extension, ext); err != nil {
		return metadata.TagHeader{}, err
	}

	objectID := req.Prior.ObjectID
	nextVersion := priorTag.Header.ObjectVersion + 1
	dataItem := metadata.DataItemForFileVersion(objectID, nextVersion)
	storagePath := objectstore.TenantPrefix(req.Tenant, dataItem)
	now := s.clock()

	priorStorageTag, err := s.loadStorage(ctx, req.Tenant, priorTag.Definition.File.StorageID)
	if err != nil {
		return metadata.TagHeader{}, err
	}
	storageDef := appendStorageItem(*priorStorageTag.Definition.Storage, dataItem, req.StorageKey, storagePath, req.MimeType, now)

	size, err := s.streamFile(ctx, req.StorageKey, storagePath, content, req.DeclaredSize)
	if err != nil {
		return metadata.TagHeader{}, err
	}

	storageSel, err := s.commitStorageUpdate(ctx, req.Tenant, metadata.SelectorFor(priorStorageTag.Header), storageDef, priorStorageTag.Attrs)
	if err != nil {
		return metadata.TagHeader{}, err
	}

	name := req.Name
	if name == "" {
		name = priorTag.Definition.File.Name
	}
	def := metadata.FileDefinition{
		Name:      name,
		Extension: ext,
		MimeType:  req.MimeType,
		Size:      size,
		StorageID: storageSel,
		DataItem:  dataItem,
	}

	attrs, ok, attrName := metadata.ApplyTagUpdates(priorTag.Attrs, req.TagUpdates)
	if !ok {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("cannot replace attr %q: not present", attrName)}
	}

	header, err := s.db.SaveNewVersion(ctx, req.Tenant, metadata.ObjectTypeFile, objectID, metadata.ObjectDefinition{ObjectType: metadata.ObjectTypeFile, File: &def}, attrs)
	if err != nil {
		s.markCopyExpunged(req.Tenant, storageSel, dataItem)
		return metadata.TagHeader{}, err
	}
	return header, nil
}

// checkFileExtensionUpdateCompatible enforces spec.md §8 scenario 5: a FILE
// update may not change the file's extension.
func checkFileExtensionUpdateCompatible(prior, next string) error {
	if prior != next {
		return &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("file update may not change extension from %q to %q", prior, next)}
	}
	return nil
}

func (s *Service) validateFileHeader(req FileWriteRequest) error {
	if req.Tenant == "" {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "tenant must not be empty"}
	}
	if err := metadata.ValidateTagUpdates(req.TagUpdates); err != nil {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}
	if err := metadata.ValidateFileName(req.Name); err != nil {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}
	if req.MimeType == "" {
		return &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "mimeType must not be empty"}
	}
	return nil
}

// streamFile copies content byte-exact to the resolved store at
// storagePath, enforcing declaredSize before commit.
func (s *Service) streamFile(ctx context.Context, storageKey, storagePath string, content io.Reader, declaredSize *int64) (int64, error) {
	store, err := s.stores.Resolve(storageKey)
	if err != nil {
		return 0, fmt.Errorf("dataservice: %w", err)
	}
	writer, err := store.Writer(ctx, storagePath)
	if err != nil {
		return 0, fmt.Errorf("dataservice: open store writer: %w", err)
	}
	return pipeline.CopyBytes(ctx, content, writer, declaredSize)
}
