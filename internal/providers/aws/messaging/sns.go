// Package messaging publishes notifications to an SNS topic.
package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// SeverityAttribute is the message attribute carrying models.Severity.
const SeverityAttribute = "severity"

// maxSubjectLen is the SNS limit for the Subject field.
const maxSubjectLen = 100

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher sends notifications to one topic.
type Publisher struct {
	client   snsClient
	topicARN string
}

// NewPublisher returns a Publisher for topicARN.
func NewPublisher(client snsClient, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// Publish sends n with its severity as a String message attribute.
func (p *Publisher) Publish(ctx context.Context, n models.Notification) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject(n.Subject)),
		Message:  aws.String(n.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			SeverityAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(n.Severity)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SNS Publish %q: %w", n.Subject, err)
	}
	return nil
}

// subject makes s valid for SNS: printable ASCII on one line, at most 100
// characters.
func subject(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r < 0x20 || r > 0x7e:
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if len(s) > maxSubjectLen {
		s = s[:maxSubjectLen]
	}
	return s
}
