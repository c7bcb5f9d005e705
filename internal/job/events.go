package job

import (
	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/rs/zerolog"
)

// Event is a single progress update for a job.
type Event struct {
	JobID    string
	Status   models.JobStatus
	Progress int
	Message  string
}

// EventSink receives progress events. Report is fire-and-forget: sinks must
// not block the pipeline and must tolerate events arriving after a terminal
// status.
type EventSink interface {
	Report(ev Event)
}

var _ EventSink = (*LogSink)(nil)

// LogSink writes events to a zerolog logger.
type LogSink struct {
	Log zerolog.Logger
}

func (s *LogSink) Report(ev Event) {
	s.Log.Info().
		Str("job_id", ev.JobID).
		Str("status", string(ev.Status)).
		Int("progress", ev.Progress).
		Msg(ev.Message)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Report(Event) {}
