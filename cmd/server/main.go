package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/grpc"
	http_adapter "github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/http"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/bootstrap"
	"github.com/JoeShih716/go-fin-ledger/internal/config"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
	"github.com/JoeShih716/go-fin-ledger/pkg/auth"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the yaml config")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. 儲存層 (memory+WAL / MySQL / PostgreSQL)，啟動時自動建表
	ctx := context.Background()
	backend, err := bootstrap.OpenBackend(ctx, cfg, true)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer backend.Close()

	// 3. UseCase
	ledger := usecase.NewLedgerService(backend.Store)
	users := usecase.NewUserService(backend.Store)
	marketGateway, err := bootstrap.NewMarketGateway(cfg.Market, backend.Quotes, nil)
	if err != nil {
		log.Fatalf("Failed to init market gateway: %v", err)
	}
	authn, err := auth.NewAuthenticator(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to init authenticator: %v", err)
	}
	money := report.NewFormatter(cfg.Currency.Code)

	// 4. 定期清掉過期報價
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Market.PurgeSchedule, func() {
		n, err := marketGateway.PurgeStale(context.Background())
		if err != nil {
			log.Printf("quote purge failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("Purged %d stale quotes", n)
		}
	}); err != nil {
		log.Fatalf("Invalid market.purge_schedule %q: %v", cfg.Market.PurgeSchedule, err)
	}
	scheduler.Start()

	// 5. gRPC
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc_adapter.AuthInterceptor(authn)))
	grpc_adapter.RegisterLedgerServer(grpcServer, grpc_adapter.NewGrpcServer(ledger, money))
	reflection.Register(grpcServer)
	go func() {
		log.Printf("Starting gRPC server on %s", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("failed to serve gRPC: %v", err)
		}
	}()

	// 6. HTTP
	httpServer := http_adapter.NewServer(ledger, users, marketGateway, authn, money, http_adapter.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		CookieName:     cfg.Server.CookieName,
		WriteRateLimit: cfg.Server.WriteRateLimit,
		AccessLog:      true,
	})
	go func() {
		log.Printf("Starting HTTP server on %s", cfg.Server.HTTPAddr)
		if err := httpServer.Listen(cfg.Server.HTTPAddr); err != nil {
			log.Fatalf("failed to serve HTTP: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	<-scheduler.Stop().Done()
	log.Println("Server exited")
}
