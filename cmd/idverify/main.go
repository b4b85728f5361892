package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/victoedr/idcard-verifier/constants"
	"github.com/victoedr/idcard-verifier/internal/common"
	"github.com/victoedr/idcard-verifier/internal/match"
	"github.com/victoedr/idcard-verifier/internal/ocr"
	"github.com/victoedr/idcard-verifier/internal/pipeline"
	"github.com/victoedr/idcard-verifier/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		imagePath = flag.String("image", "", "card image or PDF to verify")
		rawText   = flag.String("text", "", `already-extracted card text, "-" reads stdin (skips OCR)`)
		dbDSN     = flag.String("db", "", "database DSN (overrides DB_URL)")
		minConf   = flag.Float64("min-confidence", 0, "login gate confidence override (0 keeps the configured value)")
		topN      = flag.Int("top", 0, "match candidate cap override (0 keeps the configured value)")
		expect    = flag.String("expect", "", "expected card type; exit 1 when the classification differs")
		asJSON    = flag.Bool("json", false, "emit the report as JSON on stdout")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if (*imagePath == "") == (*rawText == "") {
		printError("Error: exactly one of -image or -text is required\n")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment")
	}

	cfg := common.LoadConfig()
	if *dbDSN != "" {
		cfg.Database.DSN = *dbDSN
	}
	if *minConf > 0 {
		cfg.Match.MinConfidence = *minConf
	}
	if *topN > 0 {
		cfg.Match.TopN = *topN
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(2)
	}

	var expectType constants.CardType
	if *expect != "" {
		ct, ok := constants.Canonicalize(*expect)
		if !ok {
			printError("Error: unknown card type %q (known: %s)\n", *expect, strings.Join(constants.CardTypeNames(), ", "))
			os.Exit(2)
		}
		expectType = ct
	}

	text := *rawText
	if text == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			printError("Error: read stdin: %v\n", err)
			os.Exit(1)
		}
		text = string(b)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		printError("Storage unavailable: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close store", "err", cerr)
		}
	}()
	drivers := repository.NewDriverRepository(store, logger)

	var tx ocr.TextExtractor
	if *imagePath != "" {
		tx = ocr.NewExtractor(ocr.Config{
			Tesseract:    cfg.OCR.TesseractBin,
			Preprocessor: cfg.OCR.Preprocessor,
			Pdftoppm:     cfg.OCR.PdftoppmBin,
			Language:     cfg.OCR.Language,
			TessdataDir:  cfg.OCR.TessdataDir,
			DPI:          cfg.OCR.DPI,
			MaxPages:     cfg.OCR.MaxPDFPages,
		}, logger)
	}

	policy := match.DefaultPolicy()
	policy.TopN = cfg.Match.TopN
	policy.FirstNameSimilarity = cfg.Match.NameSimilarity
	policy.AllowPartialLastName = cfg.Match.AllowPartialLastName

	verifier := pipeline.NewVerifier(
		logger,
		pipeline.VerifierConfig{
			ActiveOnly: cfg.Database.ActiveOnly,
			Gate:       pipeline.Gate{MinConfidence: cfg.Match.MinConfidence},
		},
		tx,
		drivers,
		nil,
		nil,
		match.NewMatcher(policy),
	)

	var rep *pipeline.Report
	if *imagePath != "" {
		ocrCtx, cancel := context.WithTimeout(ctx, cfg.OCR.Timeout)
		defer cancel()
		rep, err = verifier.VerifyImage(ocrCtx, *imagePath)
	} else {
		rep, err = verifier.VerifyText(ctx, text)
	}
	if err != nil {
		switch {
		case errors.Is(err, common.ErrOCRUnavailable):
			printError("OCR unavailable: %v\n", err)
		case errors.Is(err, common.ErrStorageUnavailable):
			printError("Storage unavailable: %v\n", err)
		default:
			printError("Verification failed: %v\n", err)
		}
		os.Exit(1)
	}

	if *asJSON {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			printError("Error: encode report: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		renderReport(rep)
	}

	if expectType != "" && string(expectType) != rep.CardType {
		printError("Expected %q but classified %q\n", expectType, rep.CardType)
		os.Exit(1)
	}
}

func renderReport(rep *pipeline.Report) {
	fmt.Printf("Card type:   %s\n", rep.CardType)
	fmt.Printf("Confidence:  %.1f%%\n", rep.Confidence)
	if len(rep.KeywordsFound) > 0 {
		fmt.Printf("Keywords:    %s\n", strings.Join(rep.KeywordsFound, ", "))
	}
	if rep.Fields.LicenseNumber != "" {
		fmt.Printf("License no.: %s\n", rep.Fields.LicenseNumber)
	}
	if name := rep.Fields.FullName(); name != "" {
		fmt.Printf("Name:        %s\n", name)
	}
	for _, w := range rep.Warnings {
		fmt.Printf("Warning:     %s\n", w)
	}
	fmt.Println()

	if len(rep.Matches) == 0 {
		fmt.Println("No matching drivers.")
	} else {
		headers := []string{"Rank", "Score", "Band", "License no.", "Name", "Status", "Expires"}
		aligns := []columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
		rows := make([][]string, 0, len(rep.Matches))
		for i, cand := range rep.Matches {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				strconv.Itoa(cand.Score),
				cand.Band,
				cand.Driver.LicenseNumber,
				cand.Driver.FullName(),
				cand.Driver.Status,
				cand.Driver.ExpiryDate,
			})
		}
		fmt.Println(renderTable(headers, rows, aligns))
		if rep.NameSimilarity > 0 {
			fmt.Printf("Name similarity vs top match: %.3f\n", rep.NameSimilarity)
		}
	}

	verdict := "DENIED"
	if rep.LoginAllowed {
		verdict = "ALLOWED"
	}
	fmt.Printf("\nLogin: %s (run %s, %dms)\n", verdict, rep.RunID, rep.ElapsedMS)
}
