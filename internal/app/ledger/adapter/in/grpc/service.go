package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName 完整服務名稱，訊息一律是 google.protobuf.Struct (欄位與 HTTP JSON 相同)
const ServiceName = "finledger.v1.LedgerService"

// LedgerServer gRPC 服務要實作的方法
type LedgerServer interface {
	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc 手寫的服務描述，等同 protoc 產生的 _grpc.pb.go
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateTransaction", Handler: unaryHandler("CreateTransaction", LedgerServer.CreateTransaction)},
		{MethodName: "UpdateTransaction", Handler: unaryHandler("UpdateTransaction", LedgerServer.UpdateTransaction)},
		{MethodName: "DeleteTransaction", Handler: unaryHandler("DeleteTransaction", LedgerServer.DeleteTransaction)},
		{MethodName: "ListTransactions", Handler: unaryHandler("ListTransactions", LedgerServer.ListTransactions)},
		{MethodName: "GetSummary", Handler: unaryHandler("GetSummary", LedgerServer.GetSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "finledger/v1/ledger.proto",
}

// RegisterLedgerServer 註冊到 grpc.Server
func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	full := fullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
