// Package engine runs the two scheduled pipelines, cost monitoring and
// resource cleanup, on top of the domain components. It never talks to a
// cloud SDK directly.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/billing"
	"github.com/pankaj-dahiya-devops/costwatch/internal/cleanup"
	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/notify"
	"github.com/pankaj-dahiya-devops/costwatch/internal/report"
	"github.com/pankaj-dahiya-devops/costwatch/internal/scanner"
)

// ---------------------------------------------------------------------------
// Component interfaces
// ---------------------------------------------------------------------------

// CostSource returns the billing figures for one run.
type CostSource interface {
	Snapshot(ctx context.Context, now time.Time) (*billing.Snapshot, error)
}

// Discoverer finds cleanup candidates.
type Discoverer interface {
	Scan(ctx context.Context, opts scanner.Options) scanner.Result
}

// Remediator issues cleanup actions and returns the records of those that
// succeeded.
type Remediator interface {
	Execute(ctx context.Context, c models.Candidates, gates config.CleanupConfig) []string
}

// ReportSaver persists a report document.
type ReportSaver interface {
	Save(ctx context.Context, kind report.Kind, t time.Time, v any) error
}

// Sender delivers notifications on a best-effort basis.
type Sender interface {
	Send(ctx context.Context, notes ...models.Notification) int
}

var (
	_ CostSource  = (*billing.Reader)(nil)
	_ Discoverer  = (*scanner.Scanner)(nil)
	_ Remediator  = (*cleanup.Executor)(nil)
	_ ReportSaver = (*report.Writer)(nil)
	_ Sender      = (*notify.Notifier)(nil)
)

// ---------------------------------------------------------------------------
// Pipeline boundary
// ---------------------------------------------------------------------------

// boundary is the single error exit of a pipeline. It turns panics into
// errors, sends one error notification and leaves the error for the caller.
type boundary struct {
	pipeline string
	subject  string
	sender   Sender
	log      zerolog.Logger
}

// guard must be deferred directly so recover sees the pipeline's panic.
func (b boundary) guard(ctx context.Context, errp *error) {
	if r := recover(); r != nil {
		*errp = models.NewError(models.KindUnclassified, b.pipeline, fmt.Errorf("panic: %v", r))
	}
	if *errp == nil {
		return
	}
	b.log.Error().Err(*errp).Str("kind", string(models.KindOf(*errp))).Msg(b.pipeline + " failed")
	// The run context may already be done; the error report still goes out.
	b.sender.Send(context.WithoutCancel(ctx), notify.Failure(b.subject, b.pipeline, *errp))
}
