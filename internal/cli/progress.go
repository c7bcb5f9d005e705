package cli

import (
	"fmt"
	"os"

	"github.com/SameerVers3/Scrapply/internal/job"
	"github.com/SameerVers3/Scrapply/internal/ui"
	"github.com/SameerVers3/Scrapply/pkg/models"
	progressbar "github.com/schollz/progressbar/v3"
)

var _ job.EventSink = (*progressSink)(nil)

// progressSink renders pipeline events as a terminal progress bar. The bar
// tracks the job's progress percentage; the description follows the stage
// messages.
type progressSink struct {
	bar     *progressbar.ProgressBar
	current int
}

func newProgressSink() *progressSink {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &progressSink{bar: bar}
}

func (s *progressSink) Report(ev job.Event) {
	s.bar.Describe(ev.Message)
	// Progress can step backwards (fallback and refinement report 60 after
	// 80); the bar only ever moves forward.
	if ev.Progress > s.current {
		s.current = ev.Progress
		_ = s.bar.Set(ev.Progress)
	}
	if ev.Status.Terminal() {
		_ = s.bar.Finish()
		fmt.Fprintln(os.Stderr)
		if ev.Status == models.JobFailed {
			fmt.Fprintln(os.Stderr, ui.Error("✗ "+ev.Message))
		} else {
			fmt.Fprintln(os.Stderr, ui.Success("✓ "+ev.Message))
		}
	}
}
