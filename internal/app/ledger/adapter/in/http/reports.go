package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
)

// GET /api/summary
func (s *Server) summary(c *fiber.Ctx) error {
	d, err := s.ledger.Dashboard(c.UserContext(), userID(c))
	if err != nil {
		return failed(err, "Failed to get summary")
	}
	return c.JSON(dto.FromDashboard(d, s.money))
}

// statement ?month=YYYY-MM，空白為本月
func (s *Server) statement(c *fiber.Ctx) (*report.Statement, error) {
	month := domain.StartOfMonth(time.Now())
	if q := c.Query("month"); q != "" {
		m, err := time.ParseInLocation("2006-01", q, time.Local)
		if err != nil {
			return nil, &domain.ValidationError{Field: "month", Cause: err}
		}
		month = m
	}
	txs, user, err := s.ledger.MonthTransactions(c.UserContext(), userID(c), month)
	if err != nil {
		return nil, failed(err, "Failed to get transactions")
	}
	return &report.Statement{
		Month:        month,
		Owner:        user.Name,
		Balance:      user.Balance,
		Transactions: txs,
	}, nil
}

// GET /api/reports/statement.pdf
func (s *Server) statementPDF(c *fiber.Ctx) error {
	st, err := s.statement(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.StatementPDF(&buf, s.money, st); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="statement-%s.pdf"`, st.Month.Format("2006-01")))
	return c.Send(buf.Bytes())
}

// GET /api/reports/statement.md
func (s *Server) statementMarkdown(c *fiber.Ctx) error {
	st, err := s.statement(c)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(report.StatementMarkdown(s.money, st))
}
