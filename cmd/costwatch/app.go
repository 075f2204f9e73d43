package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/billing"
	"github.com/pankaj-dahiya-devops/costwatch/internal/cleanup"
	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/engine"
	"github.com/pankaj-dahiya-devops/costwatch/internal/logging"
	"github.com/pankaj-dahiya-devops/costwatch/internal/notify"
	awsbilling "github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/billing"
	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/inventory"
	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/messaging"
	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/secrets"
	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/storage"
	"github.com/pankaj-dahiya-devops/costwatch/internal/report"
	"github.com/pankaj-dahiya-devops/costwatch/internal/scanner"
	"github.com/pankaj-dahiya-devops/costwatch/internal/slack"
)

const webhookTimeout = 10 * time.Second

// deps are the process-level inputs of every command. Tests replace them.
type deps struct {
	lookup config.LookupFunc
	loader common.SessionLoader
	logOut io.Writer
}

func defaultDeps() deps {
	return deps{
		lookup: os.LookupEnv,
		loader: common.NewDefaultSessionLoader(),
		logOut: os.Stderr,
	}
}

// pipeline selects which configuration keys must be present.
type pipeline int

const (
	pipelineCost pipeline = iota
	pipelineCleanup
	pipelineSlack
)

// app is a loaded configuration with its logger and AWS session.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	session *common.Session
}

// newApp loads and validates the configuration for p, then resolves the AWS
// session. Validation runs before any AWS call.
func newApp(ctx context.Context, d deps, p pipeline) (*app, error) {
	cfg, err := config.LoadFrom(d.lookup)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	switch p {
	case pipelineCost:
		err = cfg.ValidateCost()
	case pipelineCleanup:
		err = cfg.ValidateCleanup()
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := logging.New(d.logOut, cfg.Log.Level, cfg.Log.Format)

	session, err := d.loader.Load(ctx, common.LoadOptions{
		Profile:     cfg.AWS.Profile,
		Region:      cfg.AWS.Region,
		MaxAttempts: cfg.AWS.MaxAttempts,
		AccountID:   cfg.AccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("load aws session: %w", err)
	}
	log.Debug().
		Str("account_id", session.AccountID).
		Str("region", session.Region).
		Msg("aws session ready")

	return &app{cfg: cfg, log: log, session: session}, nil
}

func (a *app) writer() *report.Writer {
	return report.NewWriter(storage.NewS3Store(a.session.Clients.S3, a.cfg.Storage.Bucket), a.log)
}

func (a *app) notifier() *notify.Notifier {
	return notify.New(messaging.NewPublisher(a.session.Clients.SNS, a.cfg.Notifications.TopicARN), a.log)
}

func (a *app) costMonitor() *engine.CostMonitor {
	reader := billing.NewReader(awsbilling.NewSource(a.session.Clients.CostExplorer))
	return engine.NewCostMonitor(
		engine.CostMonitorConfig{
			AccountID:  a.session.AccountID,
			Bucket:     a.cfg.Storage.Bucket,
			Thresholds: a.cfg.Thresholds,
		},
		reader,
		a.writer(),
		a.notifier(),
		a.log,
	)
}

func (a *app) resourceCleanup() *engine.ResourceCleanup {
	clients := a.session.Clients
	scan := scanner.New(inventory.NewEC2(clients.EC2), inventory.NewMetrics(clients.CloudWatch), a.log)
	exec := cleanup.NewExecutor(inventory.NewActions(clients.EC2), a.log)
	return engine.NewResourceCleanup(
		engine.ResourceCleanupConfig{
			Bucket:     a.cfg.Storage.Bucket,
			Thresholds: a.cfg.Thresholds,
			Gates:      a.cfg.Cleanup,
		},
		scan,
		exec,
		a.writer(),
		a.notifier(),
		a.log,
	)
}

func (a *app) slackAdapter() *slack.Adapter {
	return slack.NewAdapter(
		secrets.NewStore(a.session.Clients.SecretsManager),
		a.cfg.Notifications.SlackSecretARN,
		&http.Client{Timeout: webhookTimeout},
		slack.DefaultRetryConfig(),
		a.log,
	)
}
