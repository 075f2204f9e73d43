package report

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// Kind selects the storage prefix and file name of a report.
type Kind string

const (
	KindCost    Kind = "cost"
	KindCleanup Kind = "cleanup"
)

var (
	prefixes  = map[Kind]string{KindCost: "daily-reports", KindCleanup: "cleanup-reports"}
	fileNames = map[Kind]string{KindCost: "cost-report.json", KindCleanup: "cleanup-report.json"}
)

// Key returns the object key for a report of kind written at t, e.g.
// "daily-reports/2026/10/17/cost-report.json". The date is taken in UTC so
// same-day reruns overwrite each other.
func Key(kind Kind, t time.Time) string {
	return path.Join(Prefix(kind, t), fileNames[kind])
}

// Prefix returns the dated directory a report of kind written at t lives in.
func Prefix(kind Kind, t time.Time) string {
	return path.Join(prefixes[kind], t.UTC().Format("2006/01/02"))
}

// Location renders the human-facing location of a dated report directory.
func Location(bucket string, kind Kind, t time.Time) string {
	return fmt.Sprintf("s3://%s/%s/", bucket, Prefix(kind, t))
}

// Marshal encodes a report as indented JSON.
func Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Store is a durable object store.
type Store interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Writer persists reports to a Store.
type Writer struct {
	store Store
	log   zerolog.Logger
}

// NewWriter returns a Writer backed by store.
func NewWriter(store Store, log zerolog.Logger) *Writer {
	return &Writer{
		store: store,
		log:   log.With().Str("component", "report").Logger(),
	}
}

// Save writes v under the key for kind at t. Failures are logged and returned
// as PersistenceFailed; callers continue to the notification step.
func (w *Writer) Save(ctx context.Context, kind Kind, t time.Time, v any) error {
	key := Key(kind, t)
	body, err := Marshal(v)
	if err != nil {
		return w.failed(key, err)
	}
	if err := w.store.Put(ctx, key, body); err != nil {
		return w.failed(key, err)
	}
	w.log.Info().Str("key", key).Int("bytes", len(body)).Msg("report saved")
	return nil
}

func (w *Writer) failed(key string, err error) error {
	err = models.NewError(models.KindPersistenceFailed, "save "+key, err)
	w.log.Error().Err(err).Str("key", key).Msg("report not saved")
	return err
}
