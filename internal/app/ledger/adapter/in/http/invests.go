package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// GET /api/invests/stock?ticker=  /api/invests/crypto?ticker=
func (s *Server) quote(c *fiber.Ctx) error {
	kind := domain.QuoteKind(c.Params("kind"))
	if !kind.Valid() {
		return fiber.ErrNotFound
	}
	q, err := s.market.Quote(c.UserContext(), kind, c.Query("ticker"))
	if err != nil {
		return failed(err, "Failed to get quote")
	}
	return c.JSON(dto.FromQuote(q))
}
