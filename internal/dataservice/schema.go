package dataservice

import (
	"context"
	"fmt"

	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/metadb"
)

// resolveEffectiveSchema returns def's TABLE schema whether it is embedded
// inline or pinned by reference to a SCHEMA object (spec.md §4.A).
func (s *Service) resolveEffectiveSchema(ctx context.Context, tenant string, def metadata.DataDefinition) (*metadata.SchemaDefinition, error) {
	if def.Schema != nil {
		return def.Schema, nil
	}
	if def.SchemaID != nil {
		tag, err := s.db.LoadObject(ctx, tenant, metadata.ObjectTypeSchema, def.SchemaID.ObjectID, *def.SchemaID)
		if err != nil {
			return nil, err
		}
		if tag.Definition.Schema == nil {
			return nil, &metadb.Error{Kind: metadb.KindInternal, Msg: "schema object has no Schema definition"}
		}
		return tag.Definition.Schema, nil
	}
	return nil, &metadb.Error{Kind: metadb.KindInvalidArgument, Msg: "dataset definition has neither an inline schema nor a schemaId"}
}

// checkDatasetSchemaUpdateCompatible enforces spec.md §4.F step 2: field
// additions are permitted, removals or type changes are FAILED_PRECONDITION,
// and switching between an embedded and an externally-referenced schema is
// FAILED_PRECONDITION.
func (s *Service) checkDatasetSchemaUpdateCompatible(ctx context.Context, tenant string, prior, next metadata.DataDefinition) error {
	if (prior.Schema != nil) != (next.Schema != nil) {
		return &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: "dataset update may not switch between an embedded and an external schema"}
	}

	priorSchema, err := s.resolveEffectiveSchema(ctx, tenant, prior)
	if err != nil {
		return err
	}
	nextSchema, err := s.resolveEffectiveSchema(ctx, tenant, next)
	if err != nil {
		return err
	}

	nextFields := make(map[string]metadata.BasicType, len(nextSchema.Table.Fields))
	for _, f := range nextSchema.Table.Fields {
		nextFields[f.FieldName] = f.FieldType
	}
	for _, f := range priorSchema.Table.Fields {
		nextType, ok := nextFields[f.FieldName]
		if !ok {
			return &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("dataset update may not remove field %q", f.FieldName)}
		}
		if nextType != f.FieldType {
			return &metadb.Error{Kind: metadb.KindFailedPrecondition, Msg: fmt.Sprintf("dataset update may not change field %q from %s to %s", f.FieldName, f.FieldType, nextType)}
		}
	}
	return nil
}
