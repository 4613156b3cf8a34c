// Command invoice-attach uploads a PDF to the configured invoice store and
// records it on an invoice.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/sales-api/internal/app"
	"github.com/xenking/sales-api/internal/domain/invoice"
	"github.com/xenking/sales-api/internal/storage/postgres"
)

func main() {
	var (
		invoiceID string
		file      string
	)
	flag.StringVar(&invoiceID, "invoice", "", "invoice id")
	flag.StringVar(&file, "file", "", "path to the PDF to attach")
	flag.Parse()

	if invoiceID == "" || file == "" {
		slog.Error("both --invoice and --file are required")
		os.Exit(1)
	}

	cfg, err := app.LoadConfigFromEnv()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, invoiceID, file); err != nil {
		slog.Error("attach failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, invoiceID, file string) error {
	if cfg.Database.Driver != app.DriverPostgres {
		return errors.Errorf("database driver %q keeps no state between processes", cfg.Database.Driver)
	}

	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "open pdf")
	}
	defer func() { _ = f.Close() }()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	files, err := app.OpenFileStore(ctx, cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open file store")
	}
	defer func() { _ = files.Close() }()

	svc := invoice.NewService(postgres.NewInvoiceRepository(pool), files)
	inv, err := svc.AttachPDF(ctx, invoiceID, f)
	if err != nil {
		return err
	}

	slog.Info("attached pdf",
		slog.String("invoice_id", inv.ID),
		slog.String("order_id", inv.OrderID),
		slog.String("key", inv.PDFKey),
		slog.String("storage", cfg.Storage.Driver),
	)
	return nil
}
