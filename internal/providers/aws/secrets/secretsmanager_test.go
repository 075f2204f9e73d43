package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type stubSM struct {
	value *string
	err   error
	id    string
}

func (s *stubSM) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	s.id = aws.ToString(in.SecretId)
	if s.err != nil {
		return nil, s.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: s.value}, nil
}

func TestGetSecret(t *testing.T) {
	stub := &stubSM{value: aws.String(`{"webhook_url":"https://hooks.slack.com/services/T/B/X","retries":3}`)}
	got, err := NewStore(stub).GetSecret(context.Background(), "arn:slack")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["webhook_url"] != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("webhook_url = %q", got["webhook_url"])
	}
	if _, ok := got["retries"]; ok {
		t.Error("non-string values must be skipped")
	}
	if stub.id != "arn:slack" {
		t.Errorf("SecretId = %q", stub.id)
	}
}

func TestGetSecret_Errors(t *testing.T) {
	cases := map[string]*stubSM{
		"api error":   {err: errors.New("ResourceNotFoundException")},
		"binary only": {},
		"not json":    {value: aws.String("plain-text")},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewStore(stub).GetSecret(context.Background(), "ref"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
