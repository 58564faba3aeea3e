// Package metadataservice implements spec.md §6's Metadata gRPC surface
// (createObject/updateObject/updateTag/readObject/readBatch/search/
// createObjectBatch) directly over internal/metadb's DAL — the same role
// internal/dataservice plays for Data, minus the storage-pipeline
// orchestration: Metadata objects carry their payload inline (MODEL/FLOW/
// JOB/CUSTOM definitions, or a standalone SCHEMA) rather than streaming
// bytes through the object store.
package metadataservice

import (
	"context"
	"fmt"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
)

// Service wraps a *metadb.DB with the request-shaped methods the gRPC
// boundary (internal/grpcapi) calls, mirroring dataservice.Service's
// split between domain logic and RPC framing.
type Service struct {
	db *metadb.DB
}

// New builds a Service over db.
func New(db *metadb.DB) *Service {
	return &Service{db: db}
}

// validateDefinition checks the tagged-union discriminator agrees with
// the declared objectType before any field is dereferenced (spec.md §9:
// "reject requests whose discriminator and payload disagree").
func validateDefinition(objectType metadata.ObjectType, def metadata.ObjectDefinition) error {
	if def.ObjectType != objectType {
		return fmt.Errorf("metadataservice: definition objectType %q does not match request objectType %q", def.ObjectType, objectType)
	}
	switch objectType {
	case metadata.ObjectTypeData:
		if def.Data == nil {
			return fmt.Errorf("metadataservice: DATA object requires a data definition")
		}
	case metadata.ObjectTypeFile:
		if def.File == nil {
			return fmt.Errorf("metadataservice: FILE object requires a file definition")
		}
	case metadata.ObjectTypeStorage:
		if def.Storage == nil {
			return fmt.Errorf("metadataservice: STORAGE object requires a storage definition")
		}
	case metadata.ObjectTypeSchema:
		if def.Schema == nil {
			return fmt.Errorf("metadataservice: SCHEMA object requires a schema definition")
		}
	case metadata.ObjectTypeModel, metadata.ObjectTypeFlow, metadata.ObjectTypeJob, metadata.ObjectTypeCustom:
		// opaque payloads are only checked for a matching discriminator.
	default:
		return fmt.Errorf("metadataservice: unknown objectType %q", objectType)
	}
	return nil
}

// CreateObjectRequest creates a brand-new object at objectVersion=1.
type CreateObjectRequest struct {
	Tenant     string
	ObjectType metadata.ObjectType
	Definition metadata.ObjectDefinition
	Attrs      map[string]*metadata.Value
}

// CreateObject validates and persists a new object, minting its objectId.
func (s *Service) CreateObject(ctx context.Context, req CreateObjectRequest) (metadata.TagHeader, error) {
	if err := validateDefinition(req.ObjectType, req.Definition); err != nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}
	objectID := metadata.NewObjectID()
	return s.db.SaveNewObject(ctx, req.Tenant, req.ObjectType, objectID, req.Definition, req.Attrs)
}

// CreateObjectBatch creates several independent objects in one call,
// returning one header per item in request order (spec.md §6 "batched
// forms").
func (s *Service) CreateObjectBatch(ctx context.Context, tenant string, items []CreateObjectRequest) ([]metadata.TagHeader, error) {
	headers := make([]metadata.TagHeader, len(items))
	for i, item := range items {
		item.Tenant = tenant
		header, err := s.CreateObject(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("metadataservice: batch item %d: %w", i, err)
		}
		headers[i] = header
	}
	return headers, nil
}

// UpdateObjectRequest commits objectVersion N+1 for an existing objectId.
type UpdateObjectRequest struct {
	Tenant     string
	ObjectType metadata.ObjectType
	ObjectID   string
	Definition metadata.ObjectDefinition
	Attrs      map[string]*metadata.Value
}

// UpdateObject validates and persists a new version of an existing object.
func (s *Service) UpdateObject(ctx context.Context, req UpdateObjectRequest) (metadata.TagHeader, error) {
	if err := validateDefinition(req.ObjectType, req.Definition); err != nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}
	return s.db.SaveNewVersion(ctx, req.Tenant, req.ObjectType, req.ObjectID, req.Definition, req.Attrs)
}

// UpdateTagRequest layers a tag-only edit onto the current objectVersion.
type UpdateTagRequest struct {
	Tenant        string
	ObjectType    metadata.ObjectType
	ObjectID      string
	ObjectVersion int64
	TagUpdates    []metadata.TagUpdate
}

// UpdateTag applies req.TagUpdates to the current attrs and commits a new
// tagVersion. Validation of the update list happens here so a malformed
// attr name or missing value never reaches the DAL.
func (s *Service) UpdateTag(ctx context.Context, req UpdateTagRequest) (metadata.TagHeader, error) {
	if err := metadata.ValidateTagUpdates(req.TagUpdates); err != nil {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: err.Error()}
	}

	v := req.ObjectVersion
	current, err := s.db.LoadObject(ctx, req.Tenant, req.ObjectType, req.ObjectID, metadata.TagSelector{ObjectVersion: &v, LatestTag: true})
	if err != nil {
		return metadata.TagHeader{}, err
	}

	next, ok, missing := metadata.ApplyTagUpdates(current.Attrs, req.TagUpdates)
	if !ok {
		return metadata.TagHeader{}, &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("tag update: REPLACE_ATTR on absent attr %q", missing)}
	}

	return s.db.SaveNewTag(ctx, req.Tenant, req.ObjectType, req.ObjectID, req.ObjectVersion, next)
}

// ReadObject resolves sel and returns the matching Tag.
func (s *Service) ReadObject(ctx context.Context, tenant string, objectType metadata.ObjectType, objectID string, sel metadata.TagSelector) (*metadata.Tag, error) {
	return s.db.LoadObject(ctx, tenant, objectType, objectID, sel)
}

// ReadBatchItem pairs one selector's objectType/objectID with its selector,
// since TagSelector alone does not name which object it resolves against
// until paired with an ID the way LoadObjects expects.
type ReadBatchItem struct {
	ObjectType metadata.ObjectType
	ObjectID   string
	Selector   metadata.TagSelector
}

// ReadBatch resolves several selectors in one call.
func (s *Service) ReadBatch(ctx context.Context, tenant string, items []ReadBatchItem) ([]*metadata.Tag, error) {
	if len(items) == 0 {
		return nil, nil
	}
	objectType := items[0].ObjectType
	ids := make([]string, len(items))
	sels := make([]metadata.TagSelector, len(items))
	for i, item := range items {
		if item.ObjectType != objectType {
			return nil, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: fmt.Sprintf("metadataservice: readBatch requires a single objectType per call, got %q and %q", objectType, item.ObjectType)}
		}
		ids[i] = item.ObjectID
		sels[i] = item.Selector
	}
	return s.db.LoadObjects(ctx, tenant, objectType, ids, sels)
}

// Search returns every TagHeader matching criteria.
func (s *Service) Search(ctx context.Context, tenant string, criteria metadb.SearchCriteria) ([]metadata.TagHeader, error) {
	return s.db.Search(ctx, tenant, criteria)
}
