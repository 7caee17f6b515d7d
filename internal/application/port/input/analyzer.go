package input

import (
	"context"

	"content-analyzer/internal/domain/entity"
)

// Analyzer drives one post (or an ordered batch of posts) through the
// full analysis pipeline. Analyze always returns a record; per-item
// failures are carried inside the record, never as an error.
type Analyzer interface {
	Analyze(ctx context.Context, post entity.Post) *entity.AnalysisRecord
	AnalyzeBatch(ctx context.Context, posts []entity.Post) <-chan *entity.AnalysisRecord
}
