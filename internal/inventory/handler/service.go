package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "omnipos.stock.v1.InventoryService"

const (
	MethodAddStock      = "AddStock"
	MethodRemoveStock   = "RemoveStock"
	MethodCorrectStock  = "CorrectStock"
	MethodListStock     = "ListStock"
	MethodCountStock    = "CountStock"
	MethodImportBatch   = "ImportBatch"
	MethodListMovements = "ListMovements"
)

// InventoryServiceServer is the server API for the inventory service. Every
// method takes and returns a google.protobuf.Struct.
type InventoryServiceServer interface {
	AddStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CorrectStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CountStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMovements(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv InventoryServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(InventoryServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(InventoryServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodAddStock, InventoryServiceServer.AddStock),
		method(MethodRemoveStock, InventoryServiceServer.RemoveStock),
		method(MethodCorrectStock, InventoryServiceServer.CorrectStock),
		method(MethodListStock, InventoryServiceServer.ListStock),
		method(MethodCountStock, InventoryServiceServer.CountStock),
		method(MethodImportBatch, InventoryServiceServer.ImportBatch),
		method(MethodListMovements, InventoryServiceServer.ListMovements),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/stock/v1/inventory.proto",
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// InventoryServiceClient calls the inventory service by method name.
type InventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) *InventoryServiceClient {
	return &InventoryServiceClient{cc: cc}
}

func (c *InventoryServiceClient) Call(ctx context.Context, name string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
