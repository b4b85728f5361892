package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errPreprocessDisabled = errors.New("image preprocessing disabled")

// preprocess writes a cleaned-up copy of the scan for the preprocessed OCR
// passes: upscale small images, grayscale, raise contrast and brightness,
// sharpen twice, finish with an unsharp mask. The chain mirrors the tuning
// that held up against low-quality phone photos of cards.
//
// Returns (outPath, cleanup, err). Call cleanup() to remove temp files.
func (e *Extractor) preprocess(ctx context.Context, in string) (string, func(), error) {
	if e.cfg.Preprocessor == "none" {
		return "", nil, errPreprocessDisabled
	}

	tmpDir, err := os.MkdirTemp("", "idv-pre-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "pre.png")

	args := []string{
		in,
		"-resize", "1000x1000<",
		"-colorspace", "Gray",
		"-brightness-contrast", "10x40",
		"-sharpen", "0x1",
		"-sharpen", "0x1",
		"-unsharp", "2x2+1.5+0.01",
		out,
	}

	switch e.cfg.Preprocessor {
	case "magick", "convert":
		if _, errb, err2 := e.runner.Run(ctx, e.cfg.Preprocessor, args...); err2 != nil {
			return "", cleanup, fmt.Errorf("%s failed: %w (%s)", e.cfg.Preprocessor, err2, truncate(string(errb), 512))
		}
	default:
		return "", cleanup, fmt.Errorf("unknown preprocessor %q: use magick | convert | none", e.cfg.Preprocessor)
	}

	if _, statErr := os.Stat(out); statErr != nil {
		return "", cleanup, fmt.Errorf("preprocessing produced no output: %v", statErr)
	}
	return out, cleanup, nil
}
