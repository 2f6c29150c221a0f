package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestConfig_DSN(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "defaults",
			cfg:  Config{Host: "db", User: "ledger", Password: "secret", DBName: "finledger"},
			want: "postgres://ledger:secret@db:5432/finledger?sslmode=disable",
		},
		{
			name: "escaped password",
			cfg:  Config{Host: "db", Port: 6432, User: "ledger", Password: "p@ss/word", DBName: "finledger", SSLMode: "require"},
			want: "postgres://ledger:p%40ss%2Fword@db:6432/finledger?sslmode=require",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.DSN(); got != tc.want {
				t.Errorf("DSN() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseIsolation(t *testing.T) {
	if got, err := ParseIsolation(""); err != nil || got != pgx.Serializable {
		t.Errorf("ParseIsolation(\"\") = %v, %v", got, err)
	}
	if got, err := ParseIsolation("READ_COMMITTED"); err != nil || got != pgx.ReadCommitted {
		t.Errorf("ParseIsolation(READ_COMMITTED) = %v, %v", got, err)
	}
	if _, err := ParseIsolation("chaos"); err == nil {
		t.Error("ParseIsolation(chaos) expected error")
	}
}

func TestErrorClassification(t *testing.T) {
	conflict := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})
	dup := &pgconn.PgError{Code: "23505"}
	if !IsSerializationFailure(conflict) {
		t.Error("40001 should be a serialization failure")
	}
	if IsSerializationFailure(dup) || IsSerializationFailure(errors.New("plain")) {
		t.Error("only 40001/40P01 are serialization failures")
	}
	if !IsUniqueViolation(dup) || IsUniqueViolation(conflict) {
		t.Error("IsUniqueViolation misclassified")
	}
}
