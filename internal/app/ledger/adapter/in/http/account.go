package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

func (s *Server) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// POST /api/auth/logout
func (s *Server) logout(c *fiber.Ctx) error {
	s.clearCookie(c)
	return c.JSON(dto.Message{Message: "logged out!"})
}

// GET /api/me
func (s *Server) me(c *fiber.Ctx) error {
	u, err := s.users.Profile(c.UserContext(), userID(c))
	if err != nil {
		return failed(err, "Failed to get user")
	}
	return c.JSON(fiber.Map{"user": dto.FromUser(u)})
}

// PUT /api/me/phone
func (s *Server) updatePhone(c *fiber.Ctx) error {
	var req dto.UpdatePhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err)
	}
	if err := s.users.UpdatePhone(c.UserContext(), userID(c), req.Phone); err != nil {
		return failed(err, "Failed to update phone")
	}
	return c.JSON(dto.Message{Message: "Phone updated successfully"})
}

// DELETE /api/me，刪除帳號與全部交易並清掉登入 cookie
func (s *Server) deleteAccount(c *fiber.Ctx) error {
	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return &domain.ValidationError{Field: "email", Cause: domain.ErrMissingField}
	}
	if !strings.EqualFold(email, identity(c).Email) {
		return fiber.NewError(fiber.StatusForbidden, "Credentials do not match the signed-in account")
	}
	removed, err := s.users.DeleteAccount(c.UserContext(), userID(c))
	if err != nil {
		return failed(err, "Failed to delete account")
	}
	s.clearCookie(c)
	return c.JSON(fiber.Map{"message": "Account and transactions deleted", "removed_transactions": removed})
}
