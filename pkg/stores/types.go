// Package stores persists analysis history so operators can review and
// replay past planning runs. The execution phase reads persisted analyses
// from here.
package stores

import (
	"context"
	"time"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
)

// AnalysisInfo is a summary row of the analysis history.
type AnalysisInfo struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	RowCount     int       `json:"row_count"`
	TotalActions int       `json:"total_actions"`
}

// Store persists analyses.
type Store interface {
	// SaveAnalysis persists a completed analysis.
	SaveAnalysis(ctx context.Context, analysis *engine.Analysis) error

	// GetAnalysis retrieves a persisted analysis by ID.
	GetAnalysis(ctx context.Context, id string) (*engine.Analysis, error)

	// ListAnalyses lists persisted analyses, newest first, up to limit.
	ListAnalyses(ctx context.Context, limit int) ([]AnalysisInfo, error)

	// Close releases store resources.
	Close() error
}
