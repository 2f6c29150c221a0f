package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// bodyError body 不是合法 JSON 時回 400
func bodyError(err error) error {
	return &domain.ValidationError{Field: "body", Cause: err}
}

// GET /api/transactions?filter=monthly|6-last-month
func (s *Server) listTransactions(c *fiber.Ctx) error {
	window, err := domain.ParseWindow(c.Query("filter"))
	if err != nil {
		return err
	}
	listing, err := s.ledger.GetTransactions(c.UserContext(), userID(c), window)
	if err != nil {
		return failed(err, "Failed to get transactions")
	}
	return c.JSON(dto.FromListing(listing))
}

// POST /api/transactions
func (s *Server) createTransaction(c *fiber.Ctx) error {
	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err)
	}
	in, err := req.ToDomain()
	if err != nil {
		return err
	}
	tx, balance, err := s.ledger.CreateTransaction(c.UserContext(), userID(c), in)
	if err != nil {
		return failed(err, "Failed to create transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransactionResult{
		Message:     "Transaction created successfully",
		Transaction: dto.FromTransaction(tx),
		Balance:     balance,
	})
}

// PUT /api/transactions，body: {id, updatedData}
func (s *Server) updateTransaction(c *fiber.Ctx) error {
	var req dto.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err)
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID and data are required")
	}
	patch, err := req.UpdatedData.ToDomain()
	if err != nil {
		return err
	}
	tx, balance, err := s.ledger.UpdateTransaction(c.UserContext(), req.ID, userID(c), patch)
	if err != nil {
		return failed(err, "Failed to update transaction")
	}
	return c.JSON(dto.TransactionResult{
		Message:     "Transaction updated successfully",
		Transaction: dto.FromTransaction(tx),
		Balance:     balance,
	})
}

// DELETE /api/transactions，body: {id}
func (s *Server) deleteTransaction(c *fiber.Ctx) error {
	var req dto.DeleteTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err)
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID is required")
	}
	tx, balance, err := s.ledger.DeleteTransaction(c.UserContext(), req.ID, userID(c))
	if err != nil {
		return failed(err, "Failed to delete transaction")
	}
	return c.JSON(dto.TransactionResult{
		Message:     "Transaction deleted successfully",
		Transaction: dto.FromTransaction(tx),
		Balance:     balance,
	})
}
