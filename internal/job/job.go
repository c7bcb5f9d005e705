// Package job holds the scraper-build job model, its in-memory store and
// the event sink the pipeline reports progress into.
package job

import (
	"time"

	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/google/uuid"
)

// Job is one scraper-build request moving through the pipeline.
type Job struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`

	Status   models.JobStatus `json:"status"`
	Progress int              `json:"progress"`
	Message  string           `json:"message"`

	Strategy     models.Strategy          `json:"strategy,omitempty"`
	Indicators   models.DynamicIndicators `json:"indicators,omitempty"`
	FallbackUsed bool                     `json:"fallback_used,omitempty"`

	// ScraperCode is the last code version that ran; SampleData holds the
	// first few records it produced.
	ScraperCode string                   `json:"scraper_code,omitempty"`
	SampleData  []map[string]interface{} `json:"sample_data,omitempty"`

	ErrorInfo *models.SandboxResult `json:"error_info,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewJob creates a pending job for url.
func NewJob(url, description string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:          uuid.NewString(),
		URL:         url,
		Description: description,
		Status:      models.JobPending,
		Progress:    0,
		Message:     "Job created, waiting to start processing",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
