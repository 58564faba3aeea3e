package trac

import (
	"context"

	"google.golang.org/grpc"
)

// DataServiceServer is the hand-authored equivalent of what
// protoc-gen-go-grpc would generate for proto/trac/data.proto's
// DataService: createDataset/updateDataset/createFile/updateFile are
// client-streaming (header message, then content chunks), readDataset/
// readFile are server-streaming (schema/file frame, then content chunks) —
// matching spec.md §4.F's streaming algorithms exactly.
type DataServiceServer interface {
	CreateDataset(DataService_CreateDatasetServer) error
	UpdateDataset(DataService_UpdateDatasetServer) error
	CreateFile(DataService_CreateFileServer) error
	UpdateFile(DataService_UpdateFileServer) error
	ReadDataset(*ReadRequest, DataService_ReadDatasetServer) error
	ReadFile(*ReadRequest, DataService_ReadFileServer) error
}

type DataService_CreateDatasetServer interface {
	SendAndClose(*WriteResponse) error
	Recv() (*DatasetWriteRequest, error)
	grpc.ServerStream
}

type DataService_UpdateDatasetServer = DataService_CreateDatasetServer

type DataService_CreateFileServer interface {
	SendAndClose(*WriteResponse) error
	Recv() (*FileWriteRequest, error)
	grpc.ServerStream
}

type DataService_UpdateFileServer = DataService_CreateFileServer

type DataService_ReadDatasetServer interface {
	Send(*ReadResponse) error
	grpc.ServerStream
}

type DataService_ReadFileServer = DataService_ReadDatasetServer

type datasetWriteStream struct{ grpc.ServerStream }

func (x *datasetWriteStream) SendAndClose(m *WriteResponse) error { return x.ServerStream.SendMsg(m) }
func (x *datasetWriteStream) Recv() (*DatasetWriteRequest, error) {
	m := new(DatasetWriteRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type fileWriteStream struct{ grpc.ServerStream }

func (x *fileWriteStream) SendAndClose(m *WriteResponse) error { return x.ServerStream.SendMsg(m) }
func (x *fileWriteStream) Recv() (*FileWriteRequest, error) {
	m := new(FileWriteRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type readStream struct{ grpc.ServerStream }

func (x *readStream) Send(m *ReadResponse) error { return x.ServerStream.SendMsg(m) }

func _DataService_CreateDataset_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(DataServiceServer).CreateDataset(&datasetWriteStream{stream})
}

func _DataService_UpdateDataset_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(DataServiceServer).UpdateDataset(&datasetWriteStream{stream})
}

func _DataService_CreateFile_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(DataServiceServer).CreateFile(&fileWriteStream{stream})
}

func _DataService_UpdateFile_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(DataServiceServer).UpdateFile(&fileWriteStream{stream})
}

func _DataService_ReadDataset_Handler(srv any, stream grpc.ServerStream) error {
	req := new(ReadRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(DataServiceServer).ReadDataset(req, &readStream{stream})
}

func _DataService_ReadFile_Handler(srv any, stream grpc.ServerStream) error {
	req := new(ReadRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(DataServiceServer).ReadFile(req, &readStream{stream})
}

// DataServiceClient is the hand-authored client stub for DataService.
type DataServiceClient interface {
	CreateDataset(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateDatasetClient, error)
	UpdateDataset(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateDatasetClient, error)
	CreateFile(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateFileClient, error)
	UpdateFile(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateFileClient, error)
	ReadDataset(ctx context.Context, in *ReadRequest, opts ...grpc.CallOption) (DataService_ReadDatasetClient, error)
	ReadFile(ctx context.Context, in *ReadRequest, opts ...grpc.CallOption) (DataService_ReadDatasetClient, error)
}

type DataService_CreateDatasetClient interface {
	Send(*DatasetWriteRequest) error
	CloseAndRecv() (*WriteResponse, error)
	grpc.ClientStream
}

type DataService_CreateFileClient interface {
	Send(*FileWriteRequest) error
	CloseAndRecv() (*WriteResponse, error)
	grpc.ClientStream
}

type DataService_ReadDatasetClient interface {
	Recv() (*ReadResponse, error)
	grpc.ClientStream
}

type datasetWriteClientStream struct{ grpc.ClientStream }

func (x *datasetWriteClientStream) Send(m *DatasetWriteRequest) error { return x.ClientStream.SendMsg(m) }
func (x *datasetWriteClientStream) CloseAndRecv() (*WriteResponse, error) {
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(WriteResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type fileWriteClientStream struct{ grpc.ClientStream }

func (x *fileWriteClientStream) Send(m *FileWriteRequest) error { return x.ClientStream.SendMsg(m) }
func (x *fileWriteClientStream) CloseAndRecv() (*WriteResponse, error) {
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(WriteResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type readClientStream struct{ grpc.ClientStream }

func (x *readClientStream) Recv() (*ReadResponse, error) {
	m := new(ReadResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type dataServiceClient struct{ cc grpc.ClientConnInterface }

// NewDataServiceClient wraps an established *grpc.ClientConn.
func NewDataServiceClient(cc grpc.ClientConnInterface) DataServiceClient {
	return &dataServiceClient{cc: cc}
}

func (c *dataServiceClient) CreateDataset(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateDatasetClient, error) {
	stream, err := c.cc.NewStream(ctx, &DataService_ServiceDesc.Streams[0], "/trac.DataService/CreateDataset", opts...)
	if err != nil {
		return nil, err
	}
	return &datasetWriteClientStream{stream}, nil
}

func (c *dataServiceClient) UpdateDataset(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateDatasetClient, error) {
	stream, err := c.cc.NewStream(ctx, &DataService_ServiceDesc.Streams[1], "/trac.DataService/UpdateDataset", opts...)
	if err != nil {
		return nil, err
	}
	return &datasetWriteClientStream{stream}, nil
}

func (c *dataServiceClient) CreateFile(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateFileClient, error) {
	stream, err := c.cc.NewStream(ctx, &DataService_ServiceDesc.Streams[2], "/trac.DataService/CreateFile", opts...)
	if err != nil {
		return nil, err
	}
	return &fileWriteClientStream{stream}, nil
}

func (c *dataServiceClient) UpdateFile(ctx context.Context, opts ...grpc.CallOption) (DataService_CreateFileClient, error) {
	stream, err := c.cc.NewStream(ctx, &DataService_ServiceDesc.Streams[3], "/trac.DataService/UpdateFile", opts...)
	if err != nil {
		return nil, err
	}
	return &fileWriteClientStream{stream}, nil
}

func (c *dataServiceClient) ReadDataset(ctx context.Context, in *ReadRequest, opts ...grpc.CallOption) (DataService_ReadDatasetClient, error) {
	stream, err := c.cc.NewStream(ctx, &DataService_ServiceDesc.Streams[4], "/trac.DataService/ReadDataset", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &readClientStream{stream}, nil
}

func (c *dataServiceClient) ReadFile(ctx context.Context, in *ReadRequest, opts ...grpc.CallOption) (DataService_ReadDatasetClient, error) {
	stream, err := c.cc.NewStream(ctx, &DataService_ServiceDesc.Streams[5], "/trac.DataService/ReadFile", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &readClientStream{stream}, nil
}

// DataService_ServiceDesc registers DataServiceServer with a *grpc.Server.
var DataService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "trac.DataService",
	HandlerType: (*DataServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{StreamName: "CreateDataset", Handler: _DataService_CreateDataset_Handler, ClientStreams: true},
		{StreamName: "UpdateDataset", Handler: _DataService_UpdateDataset_Handler, ClientStreams: true},
		{StreamName: "CreateFile", Handler: _DataService_CreateFile_Handler, ClientStreams: true},
		{StreamName: "UpdateFile", Handler: _DataService_UpdateFile_Handler, ClientStreams: true},
		{StreamName: "ReadDataset", Handler: _DataService_ReadDataset_Handler, ServerStreams: true},
		{StreamName: "ReadFile", Handler: _DataService_ReadFile_Handler, ServerStreams: true},
	},
	Metadata: "trac/data.proto",
}
