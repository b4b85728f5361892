package ocr

import (
	"context"
	"time"
)

// Candidate is one OCR rendering of a card. Every pass over the same input
// produces its own candidate; selection between them happens downstream.
type Candidate struct {
	Text         string
	Pass         string
	PSM          int
	Preprocessed bool
	Page         int
	Duration     time.Duration
	Warnings     []string
}

// TextExtractor is the OCR collaborator as seen by the verification
// service. Implementations must return candidates in a deterministic order
// so downstream tie-breaking is stable.
type TextExtractor interface {
	ExtractCandidates(ctx context.Context, path string) ([]Candidate, error)
}
