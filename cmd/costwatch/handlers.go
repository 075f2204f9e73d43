package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/pankaj-dahiya-devops/costwatch/internal/engine"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/messaging"
	"github.com/pankaj-dahiya-devops/costwatch/internal/slack"
)

const (
	costCompleted    = "Cost monitoring completed successfully"
	cleanupCompleted = "Resource cleanup completed"
)

type costRunner interface {
	Run(ctx context.Context) (*engine.CostResult, error)
}

type cleanupRunner interface {
	Run(ctx context.Context) (*engine.CleanupResult, error)
}

type deliverer interface {
	Deliver(ctx context.Context, m slack.Message) (bool, error)
}

// costResponse is the body returned by the cost handler and printed by the
// cost command.
type costResponse struct {
	Message    string  `json:"message"`
	DailyCost  float64 `json:"daily_cost"`
	WeeklyCost float64 `json:"weekly_cost"`
}

// cleanupResponse is the body returned by the cleanup handler and printed by
// the cleanup command.
type cleanupResponse struct {
	Message          string  `json:"message"`
	EstimatedSavings float64 `json:"estimated_savings"`
	DryRun           bool    `json:"dry_run"`
}

func newCostResponse(res *engine.CostResult) costResponse {
	return costResponse{
		Message:    costCompleted,
		DailyCost:  res.Report.DailyCost,
		WeeklyCost: res.Report.WeeklyCost,
	}
}

func newCleanupResponse(res *engine.CleanupResult) cleanupResponse {
	return cleanupResponse{
		Message:          cleanupCompleted,
		EstimatedSavings: res.Report.EstimatedSavings,
		DryRun:           res.Report.DryRun,
	}
}

// The scheduler's event payload carries nothing the pipelines use.

func costHandler(r costRunner) func(context.Context, json.RawMessage) (costResponse, error) {
	return func(ctx context.Context, _ json.RawMessage) (costResponse, error) {
		res, err := r.Run(ctx)
		if err != nil {
			return costResponse{}, err
		}
		return newCostResponse(res), nil
	}
}

func cleanupHandler(r cleanupRunner) func(context.Context, json.RawMessage) (cleanupResponse, error) {
	return func(ctx context.Context, _ json.RawMessage) (cleanupResponse, error) {
		res, err := r.Run(ctx)
		if err != nil {
			return cleanupResponse{}, err
		}
		return newCleanupResponse(res), nil
	}
}

// slackHandler forwards every SNS record to the chat webhook. A record that
// fails does not stop the others; the joined error is returned so the
// platform can retry the event.
func slackHandler(d deliverer) func(context.Context, events.SNSEvent) error {
	return func(ctx context.Context, ev events.SNSEvent) error {
		var errs []error
		for _, rec := range ev.Records {
			m := messageFromSNS(rec.SNS)
			if _, err := d.Deliver(ctx, m); err != nil {
				errs = append(errs, fmt.Errorf("record %s: %w", rec.SNS.MessageID, err))
			}
		}
		return errors.Join(errs...)
	}
}

func messageFromSNS(e events.SNSEntity) slack.Message {
	return slack.Message{
		Subject:   e.Subject,
		Body:      e.Message,
		Severity:  severityAttribute(e.MessageAttributes),
		Timestamp: e.Timestamp,
	}
}

// severityAttribute reads the String attribute set by the SNS publisher.
// Lambda delivers each attribute as {"Type": ..., "Value": ...}.
func severityAttribute(attrs map[string]interface{}) models.Severity {
	raw, ok := attrs[messaging.SeverityAttribute].(map[string]interface{})
	if !ok {
		return ""
	}
	v, _ := raw["Value"].(string)
	return models.Severity(v)
}
