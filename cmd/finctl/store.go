package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/bootstrap"
	"github.com/JoeShih716/go-fin-ledger/internal/config"
	"github.com/JoeShih716/go-fin-ledger/pkg/auth"
)

// storeFlags 直接操作儲存層的指令共用 (memory driver 時不要和 server 同時開同一個 WAL)
type storeFlags struct {
	configPath string
}

func (s *storeFlags) register(f *flag.FlagSet) {
	f.StringVar(&s.configPath, "config", "config/config.yaml", "path to the yaml config")
}

func (s *storeFlags) open(ctx context.Context, migrate bool) (*config.Config, *bootstrap.Backend, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, nil, err
	}
	b, err := bootstrap.OpenBackend(ctx, cfg, migrate)
	if err != nil {
		return nil, nil, err
	}
	return cfg, b, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

type migrateCmd struct {
	store storeFlags
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or update the ledger tables" }
func (*migrateCmd) Usage() string {
	return `finctl migrate [-config <path>]

  Creates the users, transactions and market_quotes tables for the configured driver.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) { c.store.register(f) }

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, b, err := c.store.open(ctx, true)
	if err != nil {
		return fail(err)
	}
	defer b.Close()
	fmt.Printf("Schema ready (%s)\n", cfg.Store.Driver)
	return subcommands.ExitSuccess
}

type registerCmd struct {
	store storeFlags
	name  string
	email string
	phone string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a user with a zero balance" }
func (*registerCmd) Usage() string {
	return `finctl register -name <name> -email <email> [-phone <phone>]

  Creates a user directly in the store and prints its id.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	c.store.register(f)
	f.StringVar(&c.name, "name", "", "display name")
	f.StringVar(&c.email, "email", "", "unique email")
	f.StringVar(&c.phone, "phone", "", "optional phone")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, b, err := c.store.open(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer b.Close()
	u, err := usecase.NewUserService(b.Store).Register(ctx, domain.NewUser{Name: c.name, Email: c.email, Phone: c.phone})
	if err != nil {
		return fail(err)
	}
	fmt.Println(u.ID)
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	store storeFlags
	name  string
	email string
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue an access token for an external identity" }
func (*tokenCmd) Usage() string {
	return `finctl token -email <email> [-name <name>]

  Looks up the user by email, creating it without a local password on first use,
  and prints a signed access token for the HTTP and gRPC APIs.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	c.store.register(f)
	f.StringVar(&c.email, "email", "", "identity email")
	f.StringVar(&c.name, "name", "", "display name used when the user is created")
}

func (c *tokenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, b, err := c.store.open(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer b.Close()

	name := c.name
	if name == "" {
		name = c.email
	}
	u, err := usecase.NewUserService(b.Store).EnsureExternal(ctx, c.email, name)
	if err != nil {
		return fail(err)
	}
	authn, err := auth.NewAuthenticator(cfg.Auth)
	if err != nil {
		return fail(err)
	}
	token, err := authn.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name})
	if err != nil {
		return fail(err)
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
