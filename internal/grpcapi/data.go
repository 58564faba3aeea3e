package grpcapi

import (
	"io"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tracplatform/trac/internal/dataservice"
	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

// DataServer implements trac.DataServiceServer atop a dataservice.Service.
type DataServer struct {
	svc *dataservice.Service
}

// NewDataServer wraps svc as a gRPC DataServiceServer.
func NewDataServer(svc *dataservice.Service) *DataServer {
	return &DataServer{svc: svc}
}

var _ trac.DataServiceServer = (*DataServer)(nil)

// streamToReader drains a client-streaming write call's content chunks into
// an io.Reader, so dataservice's Upload/CopyBytes pipelines can consume it
// without knowing anything about gRPC framing.
func streamToReader(firstContent []byte, recv func() ([]byte, error)) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		if len(firstContent) > 0 {
			if _, err := pw.Write(firstContent); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		for {
			chunk, err := recv()
			if err == io.EOF {
				pw.Close()
				return
			}
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := pw.Write(chunk); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
	}()
	return pr
}

func (d *DataServer) CreateDataset(stream trac.DataService_CreateDatasetServer) error {
	return d.datasetWrite(stream, false)
}

func (d *DataServer) UpdateDataset(stream trac.DataService_CreateDatasetServer) error {
	return d.datasetWrite(stream, true)
}

func (d *DataServer) datasetWrite(stream trac.DataService_CreateDatasetServer, update bool) error {
	first, err := stream.Recv()
	if err != nil {
		return err
	}
	if first.Header == nil {
		return status.Error(codes.InvalidArgument, "grpcapi: first message of a write stream must carry a header")
	}
	h := first.Header
	req := dataservice.DatasetWriteRequest{
		Tenant:       h.Tenant,
		TagUpdates:   h.TagUpdates,
		Schema:       h.Schema,
		SchemaID:     h.SchemaID,
		MimeType:     h.MimeType,
		DeclaredSize: h.DeclaredSize,
		StorageKey:   h.StorageKey,
		Prior:        h.Prior,
	}
	content := streamToReader(first.Content, func() ([]byte, error) {
		m, err := stream.Recv()
		if err != nil {
			return nil, err
		}
		return m.Content, nil
	})

	ctx := stream.Context()
	var tagHeader metadata.TagHeader
	if update {
		tagHeader, err = d.svc.UpdateDataset(ctx, req, content)
	} else {
		tagHeader, err = d.svc.CreateDataset(ctx, req, content)
	}
	if err != nil {
		return toStatus(err)
	}
	return stream.SendAndClose(&trac.WriteResponse{Header: tagHeader})
}

func (d *DataServer) CreateFile(stream trac.DataService_CreateFileServer) error {
	return d.fileWrite(stream, false)
}

func (d *DataServer) UpdateFile(stream trac.DataService_CreateFileServer) error {
	return d.fileWrite(stream, true)
}

func (d *DataServer) fileWrite(stream trac.DataService_CreateFileServer, update bool) error {
	first, err := stream.Recv()
	if err != nil {
		return err
	}
	if first.Header == nil {
		return status.Error(codes.InvalidArgument, "grpcapi: first message of a write stream must carry a header")
	}
	h := first.Header
	req := dataservice.FileWriteRequest{
		Tenant:       h.Tenant,
		TagUpdates:   h.TagUpdates,
		Name:         h.Name,
		Extension:    h.Extension,
		MimeType:     h.MimeType,
		DeclaredSize: h.DeclaredSize,
		StorageKey:   h.StorageKey,
		Prior:        h.Prior,
	}
	content := streamToReader(first.Content, func() ([]byte, error) {
		m, err := stream.Recv()
		if err != nil {
			return nil, err
		}
		return m.Content, nil
	})

	ctx := stream.Context()
	var tagHeader metadata.TagHeader
	if update {
		tagHeader, err = d.svc.UpdateFile(ctx, req, content)
	} else {
		tagHeader, err = d.svc.CreateFile(ctx, req, content)
	}
	if err != nil {
		return toStatus(err)
	}
	return stream.SendAndClose(&trac.WriteResponse{Header: tagHeader})
}

func (d *DataServer) ReadDataset(req *trac.ReadRequest, stream trac.DataService_ReadDatasetServer) error {
	sent := false
	dreq := dataservice.ReadRequest{
		Tenant:   req.Tenant,
		Selector: req.Selector,
		MimeType: req.MimeType,
		Offset:   req.Offset,
		Limit:    req.Limit,
		OnSchema: func(schema *metadata.SchemaDefinition) {
			if !sent {
				sent = true
				_ = stream.Send(&trac.ReadResponse{Schema: schema})
			}
		},
	}
	_, err := d.svc.ReadDataset(stream.Context(), dreq, &streamWriter{send: stream.Send})
	return toStatus(err)
}

func (d *DataServer) ReadFile(req *trac.ReadRequest, stream trac.DataService_ReadFileServer) error {
	sent := false
	dreq := dataservice.ReadRequest{
		Tenant:   req.Tenant,
		Selector: req.Selector,
		MimeType: req.MimeType,
		Offset:   req.Offset,
		Limit:    req.Limit,
		OnFile: func(file *metadata.FileDefinition) {
			if !sent {
				sent = true
				_ = stream.Send(&trac.ReadResponse{File: file})
			}
		},
	}
	_, err := d.svc.ReadFile(stream.Context(), dreq, &streamWriter{send: stream.Send})
	return toStatus(err)
}

// streamWriter adapts a server-streaming ReadResponse sender into an
// io.Writer so pipeline.Download/io.Copy can write content chunks directly
// into gRPC frames.
type streamWriter struct {
	send func(*trac.ReadResponse) error
}

func (w *streamWriter) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	if err := w.send(&trac.ReadResponse{Content: chunk}); err != nil {
		return 0, err
	}
	return len(p), nil
}
