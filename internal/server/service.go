package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "invoice.v1.ExtractionService"

	methodExtract          = "/" + ServiceName + "/Extract"
	methodGetExtraction    = "/" + ServiceName + "/GetExtraction"
	methodListExtractions  = "/" + ServiceName + "/ListExtractions"
	methodExportExtraction = "/" + ServiceName + "/ExportExtractions"
)

// ExtractionServiceServer is the server API of invoice.v1.ExtractionService.
// Requests and responses are google.protobuf.Struct documents.
type ExtractionServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetExtraction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListExtractions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportExtractions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterExtractionServiceServer registers srv on s.
func RegisterExtractionServiceServer(s grpc.ServiceRegistrar, srv ExtractionServiceServer) {
	s.RegisterService(&extractionServiceDesc, srv)
}

type unaryMethod func(ExtractionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ExtractionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ExtractionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var extractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: unaryHandler(methodExtract, ExtractionServiceServer.Extract)},
		{MethodName: "GetExtraction", Handler: unaryHandler(methodGetExtraction, ExtractionServiceServer.GetExtraction)},
		{MethodName: "ListExtractions", Handler: unaryHandler(methodListExtractions, ExtractionServiceServer.ListExtractions)},
		{MethodName: "ExportExtractions", Handler: unaryHandler(methodExportExtraction, ExtractionServiceServer.ExportExtractions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoice/v1/extraction.proto",
}

// ExtractionClient calls invoice.v1.ExtractionService.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

func (c *ExtractionClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExtractionClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodExtract, in, opts...)
}

func (c *ExtractionClient) GetExtraction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetExtraction, in, opts...)
}

func (c *ExtractionClient) ListExtractions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListExtractions, in, opts...)
}

func (c *ExtractionClient) ExportExtractions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodExportExtraction, in, opts...)
}
