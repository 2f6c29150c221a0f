package grpc

import (
	"context"
	"errors"
	"log"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
	"github.com/JoeShih716/go-fin-ledger/pkg/auth"
)

type GrpcServer struct {
	ledger *usecase.LedgerService
	money  report.Formatter
}

func NewGrpcServer(ledger *usecase.LedgerService, money report.Formatter) *GrpcServer {
	return &GrpcServer{
		ledger: ledger,
		money:  money,
	}
}

type identityKey struct{}

// AuthInterceptor 從 metadata "authorization: Bearer <token>" 驗證身分，只作用在本服務的方法
func AuthInterceptor(authn *auth.Authenticator) grpc.UnaryServerInterceptor {
	prefix := "/" + ServiceName + "/"
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}
		id, err := authn.Verify(auth.BearerToken(values[0]))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(context.WithValue(ctx, identityKey{}, *id), req)
	}
}

func ownerFrom(ctx context.Context) (string, error) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	if !ok || id.UserID == "" {
		return "", status.Error(codes.Unauthenticated, "missing identity")
	}
	return id.UserID, nil
}

// toStatus domain 錯誤轉成 gRPC 狀態碼
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrTransactionNotFound):
		return status.Error(codes.NotFound, "transaction not found or unauthorized")
	case errors.Is(err, domain.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	log.Printf("grpc: %v", err)
	return status.Error(codes.Internal, "internal error")
}

func decode(in *structpb.Struct, v any) error {
	if err := fromStruct(in, v); err != nil {
		return status.Error(codes.InvalidArgument, "malformed request: "+err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response: "+err.Error())
	}
	return out, nil
}

func (s *GrpcServer) CreateTransaction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	var req dto.CreateTransactionRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	newTx, err := req.ToDomain()
	if err != nil {
		return nil, toStatus(err)
	}
	tx, balance, err := s.ledger.CreateTransaction(ctx, owner, newTx)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(dto.TransactionResult{
		Message:     "Transaction created successfully",
		Transaction: dto.FromTransaction(tx),
		Balance:     balance,
	})
}

func (s *GrpcServer) UpdateTransaction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	var req dto.UpdateTransactionRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, toStatus(err)
	}
	patch, err := req.UpdatedData.ToDomain()
	if err != nil {
		return nil, toStatus(err)
	}
	tx, balance, err := s.ledger.UpdateTransaction(ctx, req.ID, owner, patch)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(dto.TransactionResult{
		Message:     "Transaction updated successfully",
		Transaction: dto.FromTransaction(tx),
		Balance:     balance,
	})
}

func (s *GrpcServer) DeleteTransaction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	var req dto.DeleteTransactionRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, toStatus(err)
	}
	tx, balance, err := s.ledger.DeleteTransaction(ctx, req.ID, owner)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(dto.TransactionResult{
		Message:     "Transaction deleted successfully",
		Transaction: dto.FromTransaction(tx),
		Balance:     balance,
	})
}

func (s *GrpcServer) ListTransactions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	var req dto.ListTransactionsRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	window, err := domain.ParseWindow(req.Filter)
	if err != nil {
		return nil, toStatus(err)
	}
	listing, err := s.ledger.GetTransactions(ctx, owner, window)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(dto.FromListing(listing))
}

func (s *GrpcServer) GetSummary(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.ledger.Dashboard(ctx, owner)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(dto.FromDashboard(d, s.money))
}
