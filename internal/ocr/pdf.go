package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/victoedr/idcard-verifier/internal/common"
)

// pdfCandidates rasterizes the PDF and runs the image pass set over each
// rendered page, up to the configured page cap. Cards scanned to PDF are
// nearly always a single page; the cap only guards against being handed an
// arbitrary document.
func (e *Extractor) pdfCandidates(ctx context.Context, path string) ([]Candidate, error) {
	pages, cleanup, err := e.rasterizePDF(ctx, path)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return nil, common.OCRError("rasterize pdf", err)
	}

	var cands []Candidate
	for i, img := range pages {
		pageCands, err := e.imageCandidates(ctx, img, i+1)
		if err != nil {
			return nil, err
		}
		for j := range pageCands {
			pageCands[j].Pass = fmt.Sprintf("page%d-%s", i+1, pageCands[j].Pass)
		}
		cands = append(cands, pageCands...)
	}
	return cands, nil
}

// rasterizePDF renders pages to PNG via pdftoppm and returns their paths in
// page order (prefix-1.png, prefix-2.png, ...).
func (e *Extractor) rasterizePDF(ctx context.Context, path string) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "idv-pdf-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, cleanup, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, cleanup, fmt.Errorf("no pages rendered")
	}
	return matches, cleanup, nil
}
