// Package storetest 提供所有 usecase.Store 實作共用的行為測試
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
)

var errAbort = errors.New("abort unit")

// Run 對 store 跑完整的行為測試，每個子測試都用新的使用者，可以重複對同一個資料庫執行
func Run(t *testing.T, store usecase.Store) {
	t.Helper()
	t.Run("ConcreteScenario", func(t *testing.T) { testConcreteScenario(t, store) })
	t.Run("RollbackOnError", func(t *testing.T) { testRollback(t, store) })
	t.Run("Ownership", func(t *testing.T) { testOwnership(t, store) })
	t.Run("Windows", func(t *testing.T) { testWindows(t, store) })
	t.Run("Users", func(t *testing.T) { testUsers(t, store) })
	t.Run("DeleteAccount", func(t *testing.T) { testDeleteAccount(t, store) })
}

func newUser(t *testing.T, users *usecase.UserService) *domain.User {
	t.Helper()
	id := uuid.NewString()
	u, err := users.Register(context.Background(), domain.NewUser{Name: "Store Test", Email: id + "@storetest.local"})
	if err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}
	return u
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func input(title string, amount int64, typ domain.TransactionType, d time.Time) domain.NewTransaction {
	return domain.NewTransaction{Title: title, Amount: amount, Type: typ, Category: "storetest", Date: d}
}

func assertBalance(t *testing.T, store usecase.Store, userID string, want int64) {
	t.Helper()
	u, err := store.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetUser() unexpected error = %v", err)
	}
	txs, err := store.ListTransactions(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("ListTransactions() unexpected error = %v", err)
	}
	var sum int64
	for i := range txs {
		sum += txs[i].Effect()
	}
	if u.Balance != want || sum != want {
		t.Fatalf("balance = %d, signed sum = %d, want %d", u.Balance, sum, want)
	}
}

func testConcreteScenario(t *testing.T, store usecase.Store) {
	ctx := context.Background()
	users := usecase.NewUserService(store)
	ledger := usecase.NewLedgerService(store)
	owner := newUser(t, users)

	salary, bal, err := ledger.CreateTransaction(ctx, owner.ID, input("Salary", 500000, domain.TransactionTypeIncome, day(2024, 1, 10)))
	if err != nil || bal != 500000 {
		t.Fatalf("Create(Salary) = %d, %v", bal, err)
	}
	rent, bal, err := ledger.CreateTransaction(ctx, owner.ID, input("Rent", 150000, domain.TransactionTypeExpense, day(2024, 1, 12)))
	if err != nil || bal != 350000 {
		t.Fatalf("Create(Rent) = %d, %v", bal, err)
	}
	amount := int64(200000)
	if _, bal, err = ledger.UpdateTransaction(ctx, rent.ID, owner.ID, domain.TransactionPatch{Amount: &amount}); err != nil || bal != 300000 {
		t.Fatalf("Update(Rent) = %d, %v", bal, err)
	}
	if _, bal, err = ledger.UpdateTransaction(ctx, rent.ID, owner.ID, domain.TransactionPatch{}); err != nil || bal != 300000 {
		t.Fatalf("Update(empty) = %d, %v", bal, err)
	}
	if _, bal, err = ledger.DeleteTransaction(ctx, salary.ID, owner.ID); err != nil || bal != -200000 {
		t.Fatalf("Delete(Salary) = %d, %v", bal, err)
	}
	assertBalance(t, store, owner.ID, -200000)

	txs, _ := store.ListTransactions(ctx, owner.ID, nil, nil)
	if len(txs) != 1 || txs[0].Title != "Rent" || txs[0].Amount != 200000 || !txs[0].Date.Equal(day(2024, 1, 12)) {
		t.Errorf("remaining transactions = %+v", txs)
	}
}

func testRollback(t *testing.T, store usecase.Store) {
	ctx := context.Background()
	users := usecase.NewUserService(store)
	owner := newUser(t, users)

	err := store.Atomically(ctx, func(tx usecase.StoreTx) error {
		if _, err := tx.LockUser(ctx, owner.ID); err != nil {
			return err
		}
		tran := &domain.Transaction{
			ID: uuid.NewString(), OwnerID: owner.ID, Title: "ghost", Category: "storetest",
			Amount: 777, Type: domain.TransactionTypeIncome, Date: day(2024, 2, 1),
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		if err := tx.InsertTransaction(ctx, tran); err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, owner.ID, tran.Effect()); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) && !errors.Is(err, domain.ErrStoreFailure) {
		t.Fatalf("Atomically() error = %v", err)
	}
	assertBalance(t, store, owner.ID, 0)
}

func testOwnership(t *testing.T, store usecase.Store) {
	ctx := context.Background()
	users := usecase.NewUserService(store)
	ledger := usecase.NewLedgerService(store)
	owner := newUser(t, users)
	other := newUser(t, users)

	tran, _, err := ledger.CreateTransaction(ctx, owner.ID, input("Mine", 1000, domain.TransactionTypeIncome, day(2024, 3, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ledger.DeleteTransaction(ctx, tran.ID, other.ID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Delete by other error = %v", err)
	}
	title := "stolen"
	if _, _, err := ledger.UpdateTransaction(ctx, tran.ID, other.ID, domain.TransactionPatch{Title: &title}); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Update by other error = %v", err)
	}
	if _, _, err := ledger.DeleteTransaction(ctx, uuid.NewString(), owner.ID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Delete missing error = %v", err)
	}
	assertBalance(t, store, owner.ID, 1000)
	assertBalance(t, store, other.ID, 0)
}

func testWindows(t *testing.T, store usecase.Store) {
	ctx := context.Background()
	users := usecase.NewUserService(store)
	now := day(2024, 6, 15)
	ledger := usecase.NewLedgerService(store, usecase.WithClock(func() time.Time { return now }))
	owner := newUser(t, users)

	for _, d := range []time.Time{day(2023, 11, 15), day(2024, 3, 15), day(2024, 5, 15), day(2024, 6, 2)} {
		if _, _, err := ledger.CreateTransaction(ctx, owner.ID, input(d.Format(domain.DateLayout), 100, domain.TransactionTypeIncome, d)); err != nil {
			t.Fatal(err)
		}
	}
	six, err := ledger.GetTransactions(ctx, owner.ID, domain.WindowTrailingSixMonths)
	if err != nil {
		t.Fatal(err)
	}
	if len(six.Transactions) != 3 || six.Transactions[0].Title != "2024-06-02" || six.Balance == nil || *six.Balance != 400 {
		t.Errorf("TrailingSixMonths = %d transactions, balance %v", len(six.Transactions), six.Balance)
	}
	month, err := ledger.GetTransactions(ctx, owner.ID, domain.WindowCurrentMonth)
	if err != nil {
		t.Fatal(err)
	}
	if len(month.Transactions) != 1 {
		t.Errorf("CurrentMonth = %d transactions, want 1", len(month.Transactions))
	}
}

func testUsers(t *testing.T, store usecase.Store) {
	ctx := context.Background()
	users := usecase.NewUserService(store)
	u := newUser(t, users)

	if _, err := users.Register(ctx, domain.NewUser{Name: "dup", Email: u.Email}); !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Errorf("Register(duplicate) error = %v", err)
	}
	found, err := store.FindUserByEmail(ctx, u.Email)
	if err != nil || found.ID != u.ID {
		t.Errorf("FindUserByEmail() = %+v, %v", found, err)
	}
	if err := users.UpdatePhone(ctx, u.ID, "555-0100"); err != nil {
		t.Fatal(err)
	}
	got, _ := users.Profile(ctx, u.ID)
	if got.Phone != "555-0100" || got.Credential != domain.NoLocalPassword {
		t.Errorf("Profile() = %+v", got)
	}
	if err := users.UpdatePhone(ctx, uuid.NewString(), "1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("UpdatePhone(unknown) error = %v", err)
	}
}

func testDeleteAccount(t *testing.T, store usecase.Store) {
	ctx := context.Background()
	users := usecase.NewUserService(store)
	ledger := usecase.NewLedgerService(store)
	owner := newUser(t, users)
	for i := 0; i < 2; i++ {
		if _, _, err := ledger.CreateTransaction(ctx, owner.ID, input("x", 10, domain.TransactionTypeExpense, day(2024, 4, 1))); err != nil {
			t.Fatal(err)
		}
	}
	n, err := users.DeleteAccount(ctx, owner.ID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteAccount() = %d, %v; want 2", n, err)
	}
	if _, err := store.GetUser(ctx, owner.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetUser(deleted) error = %v", err)
	}
}
