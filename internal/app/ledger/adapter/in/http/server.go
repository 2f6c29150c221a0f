package http

import (
	"context"
	"errors"
	"log"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
	"github.com/JoeShih716/go-fin-ledger/pkg/auth"
)

// Options HTTP 層的可調參數
type Options struct {
	CORSOrigins    string
	CookieName     string
	WriteRateLimit int
	// AccessLog 是否輸出每個請求的 access log
	AccessLog bool
}

// Server Fiber 版的 HTTP 入口 (Driving Adapter)
type Server struct {
	app    *fiber.App
	ledger *usecase.LedgerService
	users  *usecase.UserService
	market *usecase.MarketGateway
	authn  *auth.Authenticator
	money  report.Formatter
	opts   Options
}

func NewServer(
	ledger *usecase.LedgerService,
	users *usecase.UserService,
	market *usecase.MarketGateway,
	authn *auth.Authenticator,
	money report.Formatter,
	opts Options,
) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "auth_token"
	}
	s := &Server{
		ledger: ledger,
		users:  users,
		market: market,
		authn:  authn,
		money:  money,
		opts:   opts,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "finledger",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	if opts.AccessLog {
		s.app.Use(logger.New())
	}
	s.app.Use(corsMiddleware(opts.CORSOrigins))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Post("/api/auth/logout", s.logout)

	api := s.app.Group("/api", s.authRequired())
	write := rateLimitWrite(s.opts.WriteRateLimit)

	api.Get("/transactions", s.listTransactions)
	api.Post("/transactions", write, s.createTransaction)
	api.Put("/transactions", write, s.updateTransaction)
	api.Delete("/transactions", write, s.deleteTransaction)

	api.Get("/summary", s.summary)
	api.Get("/reports/statement.pdf", s.statementPDF)
	api.Get("/reports/statement.md", s.statementMarkdown)

	api.Get("/me", s.me)
	api.Delete("/me", write, s.deleteAccount)
	api.Put("/me/phone", write, s.updatePhone)

	api.Get("/invests/:kind", s.quote)
}

// App 測試用
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler 把 domain 錯誤對應成 HTTP 狀態碼，回應格式一律是 {"message": ...}
func errorHandler(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("http: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Error()
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrTransactionNotFound):
		return fiber.StatusNotFound, "Transaction not found or unauthorized"
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return fiber.StatusConflict, "User already exists"
	case errors.Is(err, domain.ErrQuoteUnavailable):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized, "Unauthorized"
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// failed 儲存層錯誤換成面向使用者的訊息，其他錯誤原樣交給 errorHandler
func failed(err error, msg string) error {
	if errors.Is(err, domain.ErrStoreFailure) {
		log.Printf("http: %s: %v", msg, err)
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}
	return err
}
