package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/victoedr/idcard-verifier/constants"
	"github.com/victoedr/idcard-verifier/internal/common"
	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/export"
	"github.com/victoedr/idcard-verifier/internal/ingest"
	"github.com/victoedr/idcard-verifier/internal/repository"
)

func usage() {
	fmt.Fprintf(os.Stderr, `driverctl manages the licensed-driver table.

Usage:
  driverctl import -file drivers.json [-db DSN]
  driverctl export -out drivers.xlsx [-db DSN] [-active-only]
  driverctl seed   [-db DSN]
  driverctl list   [-db DSN] [-active-only]
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "import":
		err = runImport(ctx, logger, args)
	case "export":
		err = runExport(ctx, logger, args)
	case "seed":
		err = runSeed(ctx, logger, args)
	case "list":
		err = runList(ctx, logger, args)
	case "help", "-h", "--help":
		usage()
	default:
		printError("unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// openDrivers opens the store for a subcommand and returns the repository
// plus a close func.
func openDrivers(ctx context.Context, dsn string, logger *slog.Logger) (repository.DriverRepository, func(), error) {
	cfg := common.LoadConfig()
	if dsn != "" {
		cfg.Database.DSN = dsn
	}
	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close store", "err", cerr)
		}
	}
	return repository.NewDriverRepository(store, logger), closer, nil
}

func runImport(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "JSON array of driver rows (required)")
	dsn := fs.String("db", "", "database DSN (overrides DB_URL)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	drivers, closer, err := openDrivers(ctx, *dsn, logger)
	if err != nil {
		return err
	}
	defer closer()

	results, stats, err := ingest.NewImporter(drivers, logger).ImportJSON(ctx, f)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != "" {
			printError("row %d: %s\n", r.Index, r.Err)
		}
	}
	fmt.Printf("Import complete!\n")
	fmt.Printf("- Scanned:  %d\n", stats.Scanned)
	fmt.Printf("- Inserted: %d\n", stats.Inserted)
	fmt.Printf("- Invalid:  %d\n", stats.Invalid)
	fmt.Printf("- Failed:   %d\n", stats.Failed)
	return nil
}

func runExport(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "drivers.xlsx", "output XLSX file path")
	dsn := fs.String("db", "", "database DSN (overrides DB_URL)")
	activeOnly := fs.Bool("active-only", false, "export only active licenses")
	if err := fs.Parse(args); err != nil {
		return err
	}

	drivers, closer, err := openDrivers(ctx, *dsn, logger)
	if err != nil {
		return err
	}
	defer closer()

	b, err := export.NewService(drivers, logger).DriversXLSX(ctx, *activeOnly)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, b, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	fmt.Printf("Exported to %s\n", *out)
	return nil
}

func runSeed(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	dsn := fs.String("db", "", "database DSN (overrides DB_URL)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	drivers, closer, err := openDrivers(ctx, *dsn, logger)
	if err != nil {
		return err
	}
	defer closer()

	inserted := 0
	for _, rec := range sampleDrivers() {
		if err := drivers.Insert(ctx, &rec); err != nil {
			logger.Warn("seed.skip", "license_number", rec.LicenseNumber, "err", err)
			continue
		}
		inserted++
	}
	total, err := drivers.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d drivers (table now holds %d)\n", inserted, total)
	return nil
}

func runList(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dsn := fs.String("db", "", "database DSN (overrides DB_URL)")
	activeOnly := fs.Bool("active-only", false, "list only active licenses")
	if err := fs.Parse(args); err != nil {
		return err
	}

	drivers, closer, err := openDrivers(ctx, *dsn, logger)
	if err != nil {
		return err
	}
	defer closer()

	recs, err := drivers.AllDrivers(ctx, *activeOnly)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "License no.", "Name", "Class", "Status", "Expires"})
	for _, d := range recs {
		tw.AppendRow(table.Row{d.ID, d.LicenseNumber, d.FullName(), d.LicenseClass, d.Status, d.ExpiryDate})
	}
	fmt.Println(tw.Render())
	fmt.Printf("%d drivers\n", len(recs))
	return nil
}

// sampleDrivers is the built-in demo table: a handful of California-style
// licences plus Ghana Card and Voter ID holders, including the Stewart pair
// that exercises the close-first-name band.
func sampleDrivers() []entity.DriverRecord {
	active := string(constants.StatusActive)
	return []entity.DriverRecord{
		{LicenseNumber: "B1234567", FirstName: "James", LastName: "Smith", DateOfBirth: "1988-04-12", IssueDate: "2021-06-01", ExpiryDate: "2026-06-01", Address: "1234 Maple Ave, Sacramento, CA", LicenseClass: "C", Status: active},
		{LicenseNumber: "D7654321", FirstName: "Maria", LastName: "Garcia", DateOfBirth: "1992-11-03", IssueDate: "2022-01-15", ExpiryDate: "2027-01-15", Address: "88 Harbor Blvd, San Diego, CA", LicenseClass: "C", Status: active},
		{LicenseNumber: "F2468013", FirstName: "John", LastName: "Stewart", DateOfBirth: "1979-02-27", IssueDate: "2020-08-20", ExpiryDate: "2025-08-20", Address: "410 Pine St, Fresno, CA", LicenseClass: "B", Status: active},
		{LicenseNumber: "H1357924", FirstName: "Jonathan", LastName: "Stewart", DateOfBirth: "1985-07-09", IssueDate: "2023-03-10", ExpiryDate: "2028-03-10", Address: "7 Creekside Dr, Oakland, CA", LicenseClass: "C", Status: active},
		{LicenseNumber: "GHA8800112", FirstName: "Ama", LastName: "Mensah", DateOfBirth: "1990-05-21", IssueDate: "2021-09-30", ExpiryDate: "2031-09-30", Address: "14 Ring Rd, Accra", LicenseClass: "", Status: active},
		{LicenseNumber: "VOT5566778", FirstName: "Kwame", LastName: "Osei", DateOfBirth: "1983-12-14", IssueDate: "2020-02-02", ExpiryDate: "2030-02-02", Address: "3 Market Ln, Kumasi", LicenseClass: "", Status: active},
		{LicenseNumber: "C9988776", FirstName: "Linda", LastName: "Brown", DateOfBirth: "1971-09-18", IssueDate: "2016-04-22", ExpiryDate: "2021-04-22", Address: "902 Sunset Way, Los Angeles, CA", LicenseClass: "C", Status: string(constants.StatusExpired)},
	}
}
