package trac

import (
	"context"

	"google.golang.org/grpc"

	"github.com/tracplatform/trac/internal/metadata"
)

// CreateObjectRequest creates a brand-new MODEL/FLOW/JOB/CUSTOM/SCHEMA
// object (DATA/FILE/STORAGE objects are created through DataService
// instead, since those carry a streamed byte payload).
type CreateObjectRequest struct {
	Tenant     string                    `json:"tenant"`
	ObjectType metadata.ObjectType       `json:"objectType"`
	Definition metadata.ObjectDefinition `json:"definition"`
	Attrs      map[string]*metadata.Value `json:"attrs,omitempty"`
}

type CreateObjectResponse struct {
	Header metadata.TagHeader `json:"header"`
}

type CreateObjectBatchRequest struct {
	Tenant string                `json:"tenant"`
	Items  []CreateObjectRequest `json:"items"`
}

type CreateObjectBatchResponse struct {
	Headers []metadata.TagHeader `json:"headers"`
}

type UpdateObjectRequest struct {
	Tenant     string                    `json:"tenant"`
	ObjectType metadata.ObjectType       `json:"objectType"`
	ObjectID   string                    `json:"objectId"`
	Definition metadata.ObjectDefinition `json:"definition"`
	Attrs      map[string]*metadata.Value `json:"attrs,omitempty"`
}

type UpdateObjectResponse struct {
	Header metadata.TagHeader `json:"header"`
}

type UpdateTagRequest struct {
	Tenant        string               `json:"tenant"`
	ObjectType    metadata.ObjectType  `json:"objectType"`
	ObjectID      string               `json:"objectId"`
	ObjectVersion int64                `json:"objectVersion"`
	TagUpdates    []metadata.TagUpdate `json:"tagUpdates"`
}

type UpdateTagResponse struct {
	Header metadata.TagHeader `json:"header"`
}

type ReadObjectRequest struct {
	Tenant     string               `json:"tenant"`
	ObjectType metadata.ObjectType  `json:"objectType"`
	ObjectID   string               `json:"objectId"`
	Selector   metadata.TagSelector `json:"selector"`
}

type ReadObjectResponse struct {
	Tag metadata.Tag `json:"tag"`
}

type ReadBatchRequestItem struct {
	ObjectType metadata.ObjectType  `json:"objectType"`
	ObjectID   string               `json:"objectId"`
	Selector   metadata.TagSelector `json:"selector"`
}

type ReadBatchRequest struct {
	Tenant string                  `json:"tenant"`
	Items  []ReadBatchRequestItem  `json:"items"`
}

type ReadBatchResponse struct {
	Tags []*metadata.Tag `json:"tags"`
}

type SearchRequest struct {
	Tenant     string              `json:"tenant"`
	ObjectType metadata.ObjectType `json:"objectType,omitempty"`
	AttrEquals map[string]string   `json:"attrEquals,omitempty"`
	Limit      int                 `json:"limit,omitempty"`
}

type SearchResponse struct {
	Headers []metadata.TagHeader `json:"headers"`
}

// MetadataServiceServer is the hand-authored stand-in for
// proto/trac/metadata.proto's generated server interface — all seven RPCs
// named in spec.md §6 are unary.
type MetadataServiceServer interface {
	CreateObject(context.Context, *CreateObjectRequest) (*CreateObjectResponse, error)
	CreateObjectBatch(context.Context, *CreateObjectBatchRequest) (*CreateObjectBatchResponse, error)
	UpdateObject(context.Context, *UpdateObjectRequest) (*UpdateObjectResponse, error)
	UpdateTag(context.Context, *UpdateTagRequest) (*UpdateTagResponse, error)
	ReadObject(context.Context, *ReadObjectRequest) (*ReadObjectResponse, error)
	ReadBatch(context.Context, *ReadBatchRequest) (*ReadBatchResponse, error)
	Search(context.Context, *SearchRequest) (*SearchResponse, error)
}

// MetadataServiceClient is the hand-authored client stub.
type MetadataServiceClient interface {
	CreateObject(ctx context.Context, in *CreateObjectRequest, opts ...grpc.CallOption) (*CreateObjectResponse, error)
	CreateObjectBatch(ctx context.Context, in *CreateObjectBatchRequest, opts ...grpc.CallOption) (*CreateObjectBatchResponse, error)
	UpdateObject(ctx context.Context, in *UpdateObjectRequest, opts ...grpc.CallOption) (*UpdateObjectResponse, error)
	UpdateTag(ctx context.Context, in *UpdateTagRequest, opts ...grpc.CallOption) (*UpdateTagResponse, error)
	ReadObject(ctx context.Context, in *ReadObjectRequest, opts ...grpc.CallOption) (*ReadObjectResponse, error)
	ReadBatch(ctx context.Context, in *ReadBatchRequest, opts ...grpc.CallOption) (*ReadBatchResponse, error)
	Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SearchResponse, error)
}

type metadataServiceClient struct{ cc grpc.ClientConnInterface }

// NewMetadataServiceClient wraps an established *grpc.ClientConn.
func NewMetadataServiceClient(cc grpc.ClientConnInterface) MetadataServiceClient {
	return &metadataServiceClient{cc: cc}
}

func (c *metadataServiceClient) CreateObject(ctx context.Context, in *CreateObjectRequest, opts ...grpc.CallOption) (*CreateObjectResponse, error) {
	out := new(CreateObjectResponse)
	if err := c.cc.Invoke(ctx, "/trac.MetadataService/CreateObject", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) CreateObjectBatch(ctx context.Context, in *CreateObjectBatchRequest, opts ...grpc.CallOption) (*CreateObjectBatchResponse, error) {
	out := new(CreateObjectBatchResponse)
	if err := c.cc.Invoke(ctx, "/trac.MetadataService/CreateObjectBatch", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) UpdateObject(ctx context.Context, in *UpdateObjectRequest, opts ...grpc.CallOption) (*UpdateObjectResponse, error) {
	out := new(UpdateObjectResponse)
	if err := c.cc.Invoke(ctx, "/trac.MetadataService/UpdateObject", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) UpdateTag(ctx context.Context, in *UpdateTagRequest, opts ...grpc.CallOption) (*UpdateTagResponse, error) {
	out := new(UpdateTagResponse)
	if err := c.cc.Invoke(ctx, "/trac.MetadataService/UpdateTag", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) ReadObject(ctx context.Context, in *ReadObjectRequest, opts ...grpc.CallOption) (*ReadObjectResponse, error) {
	out := new(ReadObjectResponse)
	if err := c.cc.Invoke(ctx, "/trac.MetadataService/ReadObject", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) ReadBatch(ctx context.Context, in *ReadBatchRequest, opts ...grpc.CallOption) (*ReadBatchResponse, error) {
	out := new(ReadBatchResponse)
	if err := c.cc.Invoke(ctx, "/trac.MetadataService/ReadBatch", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SearchResponse, error) {
	out := new(SearchResponse)
	if err := c.cc.Invoke(ctx, "/trac.MetadataService/Search", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _MetadataService_CreateObject_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateObjectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetadataServiceServer).CreateObject(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.MetadataService/CreateObject"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MetadataServiceServer).CreateObject(ctx, req.(*CreateObjectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetadataService_CreateObjectBatch_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateObjectBatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetadataServiceServer).CreateObjectBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.MetadataService/CreateObjectBatch"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MetadataServiceServer).CreateObjectBatch(ctx, req.(*CreateObjectBatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetadataService_UpdateObject_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateObjectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetadataServiceServer).UpdateObject(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.MetadataService/UpdateObject"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MetadataServiceServer).UpdateObject(ctx, req.(*UpdateObjectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetadataService_UpdateTag_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateTagRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetadataServiceServer).UpdateTag(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.MetadataService/UpdateTag"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MetadataServiceServer).UpdateTag(ctx, req.(*UpdateTagRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetadataService_ReadObject_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReadObjectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetadataServiceServer).ReadObject(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.MetadataService/ReadObject"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MetadataServiceServer).ReadObject(ctx, req.(*ReadObjectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetadataService_ReadBatch_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReadBatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetadataServiceServer).ReadBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.MetadataService/ReadBatch"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MetadataServiceServer).ReadBatch(ctx, req.(*ReadBatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetadataService_Search_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetadataServiceServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/trac.MetadataService/Search"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MetadataServiceServer).Search(ctx, req.(*SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MetadataService_ServiceDesc registers MetadataServiceServer with a
// *grpc.Server.
var MetadataService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "trac.MetadataService",
	HandlerType: (*MetadataServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateObject", Handler: _MetadataService_CreateObject_Handler},
		{MethodName: "CreateObjectBatch", Handler: _MetadataService_CreateObjectBatch_Handler},
		{MethodName: "UpdateObject", Handler: _MetadataService_UpdateObject_Handler},
		{MethodName: "UpdateTag", Handler: _MetadataService_UpdateTag_Handler},
		{MethodName: "ReadObject", Handler: _MetadataService_ReadObject_Handler},
		{MethodName: "ReadBatch", Handler: _MetadataService_ReadBatch_Handler},
		{MethodName: "Search", Handler: _MetadataService_Search_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trac/metadata.proto",
}
