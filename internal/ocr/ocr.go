package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/victoedr/idcard-verifier/constants"
	"github.com/victoedr/idcard-verifier/internal/common"
)

// Page segmentation modes used by the extraction passes: cards are mostly a
// uniform block of text (6), with a fully automatic pass (3) as backup.
const (
	psmBlock = 6
	psmAuto  = 3
)

type Config struct {
	Tesseract    string // binary name or absolute path; if empty -> "tesseract"
	Preprocessor string // "magick" | "convert" | "none"; if empty -> "magick"
	Pdftoppm     string // binary name or absolute path; if empty -> "pdftoppm"

	Language    string // default "eng"
	TessdataDir string
	OEM         int // default 3 (legacy+LSTM auto)

	DPI      int // rasterization DPI for PDF pages, default 300
	MaxPages int // page cap for PDFs, default 4
}

// Extractor shells out to tesseract for OCR, returning one candidate per
// pass: preprocessed block, raw block, preprocessed auto layout. Scans where
// preprocessing is unavailable degrade to the raw pass alone.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Preprocessor == "" {
		cfg.Preprocessor = "magick"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.OEM <= 0 {
		cfg.OEM = 3
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 4
	}
	return &Extractor{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// WithRunner swaps the exec seam; tests use it to stub the binaries.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// ExtractCandidates picks a strategy based on file extension.
func (e *Extractor) ExtractCandidates(ctx context.Context, path string) ([]Candidate, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	format, ok := constants.FormatFromExt(ext)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported extension %q", common.ErrInvalidInput, ext)
	}
	e.logger.Debug("ocr.extract.start", "path", path, "format", format)

	if format == "PDF" {
		return e.pdfCandidates(ctx, path)
	}
	cands, err := e.imageCandidates(ctx, path, 1)
	if err != nil {
		return nil, err
	}
	return cands, nil
}

// imageCandidates runs the pass set over a single image. Page tags which
// source page the image came from (1 for plain images).
func (e *Extractor) imageCandidates(ctx context.Context, path string, page int) ([]Candidate, error) {
	var preWarns []string

	prePath, cleanup, preErr := e.preprocess(ctx, path)
	if cleanup != nil {
		defer cleanup()
	}
	if preErr != nil {
		if !errors.Is(preErr, errPreprocessDisabled) {
			preWarns = append(preWarns, fmt.Sprintf("preprocessing unavailable: %v", preErr))
			e.logger.Warn("ocr.preprocess.skipped", "path", path, "error", preErr)
		}
		prePath = ""
	}

	type pass struct {
		name         string
		path         string
		psm          int
		preprocessed bool
	}
	var passes []pass
	if prePath != "" {
		passes = append(passes, pass{"preprocessed-block", prePath, psmBlock, true})
	}
	passes = append(passes, pass{"raw-block", path, psmBlock, false})
	if prePath != "" {
		passes = append(passes, pass{"preprocessed-auto", prePath, psmAuto, true})
	}

	cands := make([]Candidate, 0, len(passes))
	for _, p := range passes {
		start := time.Now()
		text, err := e.tesseract(ctx, p.path, p.psm)
		if err != nil {
			return nil, common.OCRError("tesseract pass "+p.name, err)
		}
		cands = append(cands, Candidate{
			Text:         text,
			Pass:         p.name,
			PSM:          p.psm,
			Preprocessed: p.preprocessed,
			Page:         page,
			Duration:     time.Since(start),
			Warnings:     preWarns,
		})
	}
	return cands, nil
}

// tesseract <file> stdout -l <lang> --oem N --psm N
func (e *Extractor) tesseract(ctx context.Context, path string, psm int) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language,
		"--oem", strconv.Itoa(e.cfg.OEM),
		"--psm", strconv.Itoa(psm),
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
