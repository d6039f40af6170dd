// Command seed-db loads the fruit catalog from a JSON file and creates an
// initial admin account. It is idempotent: products are upserted and an
// already-registered admin is left untouched.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshbasket/orderd/internal/domain/product"
	"github.com/freshbasket/orderd/internal/domain/user"
	"github.com/freshbasket/orderd/internal/repository"
)

type productJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Weight    string          `json:"weight"`
	Pieces    string          `json:"pieces"`
	BoxWeight string          `json:"boxWeight"`
	BoxPrice  decimal.Decimal `json:"boxPrice"`
	Rating    decimal.Decimal `json:"rating"`
	Quantity  string          `json:"quantity"`
	Image     string          `json:"image"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminUsername string
		adminPhone    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminUsername, "admin-username", "admin", "username for the seeded admin account")
	flag.StringVar(&adminPhone, "admin-phone", "0000000000", "phone for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or ORDERD_SEED_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("ORDERD_SEED_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or ORDERD_SEED_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminUsername, adminPhone, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, username, phone, password string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedAdmin(ctx, repository.NewUserRepository(pool), username, phone, password); err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, &product.Product{
			ID:        p.ID,
			Name:      p.Name,
			Weight:    p.Weight,
			Pieces:    p.Pieces,
			BoxWeight: p.BoxWeight,
			BoxPrice:  p.BoxPrice,
			Rating:    p.Rating,
			Quantity:  p.Quantity,
			Image:     p.Image,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedAdmin(ctx context.Context, repo *repository.UserRepository, username, phone, password string) error {
	slog.Info("seeding admin account", slog.String("username", username))

	_, err := user.NewService(repo).Register(ctx, username, phone, password)
	if errors.Is(err, user.ErrPhoneTaken) {
		slog.Info("admin account already exists, skipping")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "register admin")
	}

	slog.Info("admin account created")
	return nil
}
