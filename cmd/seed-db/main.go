package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/handler"
	"github.com/xenking/sales-api/internal/seed"
	"github.com/xenking/sales-api/internal/storage/postgres"
)

type options struct {
	databaseURL string
	pepper      string
	adminKey    string
	userKey     string
	adminScope  string
	jwtSecret   string
	tokenTTL    time.Duration
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.pepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SALES_API_KEY_PEPPER env)")
	flag.StringVar(&opts.adminKey, "admin-key", "", "API key granted the admin scope (or SALES_SEED_ADMIN_KEY env)")
	flag.StringVar(&opts.userKey, "user-key", "", "optional API key for a regular caller (or SALES_SEED_USER_KEY env)")
	flag.StringVar(&opts.adminScope, "admin-scope", "admin", "scope granting privileged access")
	flag.StringVar(&opts.jwtSecret, "jwt-secret", "", "when set, print a bearer token for the admin (or SALES_JWT_SECRET env)")
	flag.DurationVar(&opts.tokenTTL, "token-ttl", 24*time.Hour, "lifetime of the printed bearer token")
	flag.Parse()

	opts.databaseURL = orEnv(opts.databaseURL, "SALES_DATABASE_URL", "DATABASE_URL")
	opts.pepper = orEnv(opts.pepper, "SALES_API_KEY_PEPPER")
	opts.adminKey = orEnv(opts.adminKey, "SALES_SEED_ADMIN_KEY")
	opts.userKey = orEnv(opts.userKey, "SALES_SEED_USER_KEY")
	opts.jwtSecret = orEnv(opts.jwtSecret, "SALES_JWT_SECRET")

	if opts.databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if opts.adminKey == "" {
		slog.Error("admin key is required: set --admin-key or SALES_SEED_ADMIN_KEY")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func orEnv(v string, keys ...string) string {
	for _, k := range keys {
		if v != "" {
			return v
		}
		v = os.Getenv(k)
	}
	return v
}

func run(ctx context.Context, opts options) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	n, err := seed.Discounts(ctx, postgres.NewDiscountRepository(pool))
	if err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	slog.Info("seeded discounts", slog.Int("inserted", n))

	keys := []seed.Key{{
		ID:     "admin",
		Name:   "Admin key",
		Raw:    opts.adminKey,
		Scopes: []string{opts.adminScope},
	}}
	if opts.userKey != "" {
		keys = append(keys, seed.Key{ID: "user", Name: "Default user key", Raw: opts.userKey})
	}
	if err := seed.APIKeys(ctx, postgres.NewAPIKeyRepository(pool), []byte(opts.pepper), keys...); err != nil {
		return errors.Wrap(err, "seed api keys")
	}
	slog.Info("upserted api keys", slog.Int("count", len(keys)))

	if opts.jwtSecret != "" {
		token, err := handler.SignToken([]byte(opts.jwtSecret), &auth.Caller{
			ID:     "admin",
			Name:   "Admin key",
			Scopes: []string{opts.adminScope},
		}, opts.tokenTTL)
		if err != nil {
			return errors.Wrap(err, "sign admin token")
		}
		fmt.Println(token)
	}

	return nil
}
