package grpcapi

import (
	"context"

	"github.com/tracplatform/trac/internal/metadataservice"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

// MetadataServer implements trac.MetadataServiceServer atop a
// metadataservice.Service, the same wrapping role DataServer plays for
// dataservice.Service.
type MetadataServer struct {
	svc *metadataservice.Service
}

// NewMetadataServer wraps svc as a gRPC MetadataServiceServer.
func NewMetadataServer(svc *metadataservice.Service) *MetadataServer {
	return &MetadataServer{svc: svc}
}

var _ trac.MetadataServiceServer = (*MetadataServer)(nil)

func (m *MetadataServer) CreateObject(ctx context.Context, req *trac.CreateObjectRequest) (*trac.CreateObjectResponse, error) {
	header, err := m.svc.CreateObject(ctx, metadataservice.CreateObjectRequest{
		Tenant:     req.Tenant,
		ObjectType: req.ObjectType,
		Definition: req.Definition,
		Attrs:      req.Attrs,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.CreateObjectResponse{Header: header}, nil
}

func (m *MetadataServer) CreateObjectBatch(ctx context.Context, req *trac.CreateObjectBatchRequest) (*trac.CreateObjectBatchResponse, error) {
	items := make([]metadataservice.CreateObjectRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = metadataservice.CreateObjectRequest{
			Tenant:     item.Tenant,
			ObjectType: item.ObjectType,
			Definition: item.Definition,
			Attrs:      item.Attrs,
		}
	}
	headers, err := m.svc.CreateObjectBatch(ctx, req.Tenant, items)
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.CreateObjectBatchResponse{Headers: headers}, nil
}

func (m *MetadataServer) UpdateObject(ctx context.Context, req *trac.UpdateObjectRequest) (*trac.UpdateObjectResponse, error) {
	header, err := m.svc.UpdateObject(ctx, metadataservice.UpdateObjectRequest{
		Tenant:     req.Tenant,
		ObjectType: req.ObjectType,
		ObjectID:   req.ObjectID,
		Definition: req.Definition,
		Attrs:      req.Attrs,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.UpdateObjectResponse{Header: header}, nil
}

func (m *MetadataServer) UpdateTag(ctx context.Context, req *trac.UpdateTagRequest) (*trac.UpdateTagResponse, error) {
	header, err := m.svc.UpdateTag(ctx, metadataservice.UpdateTagRequest{
		Tenant:        req.Tenant,
		ObjectType:    req.ObjectType,
		ObjectID:      req.ObjectID,
		ObjectVersion: req.ObjectVersion,
		TagUpdates:    req.TagUpdates,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.UpdateTagResponse{Header: header}, nil
}

func (m *MetadataServer) ReadObject(ctx context.Context, req *trac.ReadObjectRequest) (*trac.ReadObjectResponse, error) {
	tag, err := m.svc.ReadObject(ctx, req.Tenant, req.ObjectType, req.ObjectID, req.Selector)
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.ReadObjectResponse{Tag: *tag}, nil
}

func (m *MetadataServer) ReadBatch(ctx context.Context, req *trac.ReadBatchRequest) (*trac.ReadBatchResponse, error) {
	items := make([]metadataservice.ReadBatchItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = metadataservice.ReadBatchItem{
			ObjectType: item.ObjectType,
			ObjectID:   item.ObjectID,
			Selector:   item.Selector,
		}
	}
	tags, err := m.svc.ReadBatch(ctx, req.Tenant, items)
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.ReadBatchResponse{Tags: tags}, nil
}

func (m *MetadataServer) Search(ctx context.Context, req *trac.SearchRequest) (*trac.SearchResponse, error) {
	headers, err := m.svc.Search(ctx, req.Tenant, metadb.SearchCriteria{
		ObjectType: req.ObjectType,
		AttrEquals: req.AttrEquals,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &trac.SearchResponse{Headers: headers}, nil
}
