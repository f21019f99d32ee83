package analysis

import (
	"context"

	"github.com/reelhire/reelhire/internal/models"
)

// Request and Result are the wire contract with the AI scoring collaborator.
// Competency correlation across this boundary is by name string, not id;
// the submission pipeline translates name to id in both directions.
type Request struct {
	Competencies   []string               `json:"competencies"`
	Transcript     string                 `json:"transcript,omitempty"`
	VideoResponses []models.VideoResponse `json:"videoResponses,omitempty"`
}

type Result struct {
	Transcript   string             `json:"transcript,omitempty"`
	Scores       map[string]float64 `json:"scores"`       // by competency name
	Explanations map[string]string  `json:"explanations"` // by competency name
}

// Provider scores one interview. Failures are non-fatal to submission:
// callers log and leave prior scores untouched. Partial results (a subset of
// the requested competencies) are valid.
type Provider interface {
	Analyze(ctx context.Context, req Request) (Result, error)
	Close() error
}
