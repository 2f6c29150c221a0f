package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
)

// Client LedgerService 的客戶端，身分由呼叫端的 interceptor 或 metadata 帶入
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return err
	}
	return fromStruct(out, resp)
}

func (c *Client) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*dto.TransactionResult, error) {
	var resp dto.TransactionResult
	if err := c.invoke(ctx, "CreateTransaction", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, req dto.UpdateTransactionRequest) (*dto.TransactionResult, error) {
	var resp dto.TransactionResult
	if err := c.invoke(ctx, "UpdateTransaction", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) (*dto.TransactionResult, error) {
	var resp dto.TransactionResult
	if err := c.invoke(ctx, "DeleteTransaction", dto.DeleteTransactionRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListTransactions(ctx context.Context, filter string) (*dto.ListResult, error) {
	var resp dto.ListResult
	if err := c.invoke(ctx, "ListTransactions", dto.ListTransactionsRequest{Filter: filter}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetSummary(ctx context.Context) (*dto.SummaryResult, error) {
	var resp dto.SummaryResult
	if err := c.invoke(ctx, "GetSummary", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
