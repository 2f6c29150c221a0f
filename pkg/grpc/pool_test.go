package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestPool_ReusesConnection(t *testing.T) {
	p := NewPool()
	defer p.Close()

	a, err := p.GetConnection("passthrough:///ledger-a")
	if err != nil {
		t.Fatalf("GetConnection() unexpected error = %v", err)
	}
	b, err := p.GetConnection("passthrough:///ledger-a")
	if err != nil {
		t.Fatalf("GetConnection() unexpected error = %v", err)
	}
	if a != b {
		t.Error("GetConnection() returned different connections for the same target")
	}
	other, err := p.GetConnection("passthrough:///ledger-b")
	if err != nil {
		t.Fatalf("GetConnection() unexpected error = %v", err)
	}
	if other == a {
		t.Error("GetConnection() shared a connection across targets")
	}
}

func TestPool_ReplacesClosedConnection(t *testing.T) {
	p := NewPool()
	defer p.Close()

	first, err := p.GetConnection("passthrough:///ledger")
	if err != nil {
		t.Fatalf("GetConnection() unexpected error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() unexpected error = %v", err)
	}
	second, err := p.GetConnection("passthrough:///ledger")
	if err != nil {
		t.Fatalf("GetConnection() unexpected error = %v", err)
	}
	if first == second {
		t.Error("GetConnection() returned a shut down connection")
	}
}

func TestBearerInterceptor(t *testing.T) {
	var got []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		got = md.Get("authorization")
		return nil
	}
	err := BearerInterceptor("abc")(context.Background(), "/svc/M", nil, nil, nil, invoker)
	if err != nil {
		t.Fatalf("interceptor unexpected error = %v", err)
	}
	if len(got) != 1 || got[0] != "Bearer abc" {
		t.Errorf("authorization = %v", got)
	}
}
