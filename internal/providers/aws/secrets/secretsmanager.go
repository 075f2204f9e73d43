// Package secrets reads JSON key/value secrets from Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsClient interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// Store resolves secret ids (names or ARNs) to their string fields.
type Store struct {
	client secretsClient
}

// NewStore returns a Store backed by client.
func NewStore(client secretsClient) *Store {
	return &Store{client: client}
}

// GetSecret fetches ref and decodes its SecretString as a JSON object.
// Non-string values are skipped.
func (s *Store) GetSecret(ctx context.Context, ref string) (map[string]string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(ref)})
	if err != nil {
		return nil, fmt.Errorf("GetSecretValue %s: %w", ref, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", ref)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(*out.SecretString), &raw); err != nil {
		return nil, fmt.Errorf("decode secret %s: %w", ref, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			values[k] = s
		}
	}
	return values, nil
}
