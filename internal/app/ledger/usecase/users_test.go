package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

func TestUsers_RegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.users.Register(ctx, domain.NewUser{Name: "Ana", Email: "Ana@Example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Balance != 0 || u.Credential != domain.NoLocalPassword || u.Email != "ana@example.com" {
		t.Errorf("Register() = %+v", u)
	}
	if _, err := f.users.Register(ctx, domain.NewUser{Name: "Other", Email: "ana@example.com"}); !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Errorf("Register(duplicate) error = %v, want %v", err, domain.ErrUserAlreadyExists)
	}
}

func TestUsers_EnsureExternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.users.EnsureExternal(ctx, "g@example.com", "G")
	if err != nil {
		t.Fatal(err)
	}
	again, err := f.users.EnsureExternal(ctx, "G@example.com", "G")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != again.ID {
		t.Errorf("EnsureExternal() created a second user: %s != %s", first.ID, again.ID)
	}
	if first.HasLocalPassword() {
		t.Error("external user has a local password")
	}
}

func TestUsers_UpdatePhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "phone@example.com")
	if err := f.users.UpdatePhone(ctx, id, " "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdatePhone(blank) error = %v", err)
	}
	if err := f.users.UpdatePhone(ctx, id, "+55 11 99999-0000"); err != nil {
		t.Fatal(err)
	}
	u, _ := f.users.Profile(ctx, id)
	if u.Phone != "+55 11 99999-0000" {
		t.Errorf("Profile().Phone = %q", u.Phone)
	}
}

func TestUsers_DeleteAccountCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "bye@example.com")
	other := f.register(t, "stay@example.com")
	for i := 0; i < 3; i++ {
		if _, _, err := f.ledger.CreateTransaction(ctx, owner, newTx("x", 100, domain.TransactionTypeIncome, date(2024, 1, 1))); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := f.ledger.CreateTransaction(ctx, other, newTx("keep", 100, domain.TransactionTypeIncome, date(2024, 1, 1))); err != nil {
		t.Fatal(err)
	}

	n, err := f.users.DeleteAccount(ctx, owner)
	if err != nil || n != 3 {
		t.Fatalf("DeleteAccount() = %d, %v; want 3", n, err)
	}
	if _, err := f.users.Profile(ctx, owner); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Profile(deleted) error = %v", err)
	}
	left, _ := f.store.ListTransactions(ctx, owner, nil, nil)
	if len(left) != 0 {
		t.Errorf("%d transactions survived account deletion", len(left))
	}
	kept, _ := f.store.ListTransactions(ctx, other, nil, nil)
	if len(kept) != 1 {
		t.Errorf("other user's transactions = %d, want 1", len(kept))
	}
	if _, err := f.users.DeleteAccount(ctx, owner); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("DeleteAccount(twice) error = %v", err)
	}
}
