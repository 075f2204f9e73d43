package common

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// notFoundCodes are the EC2 error codes meaning the target of an action no
// longer exists.
var notFoundCodes = map[string]bool{
	"InvalidVolume.NotFound":       true,
	"InvalidSnapshot.NotFound":     true,
	"InvalidAllocationID.NotFound": true,
	"InvalidInstanceID.NotFound":   true,
}

// IsNotFound reports whether err carries one of the resource-gone API codes.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return notFoundCodes[apiErr.ErrorCode()]
	}
	return false
}

// ClassifyActionError wraps models.ErrResourceGone around not-found errors so
// callers can tell a vanished target from a real failure. Other errors pass
// through with op as context.
func ClassifyActionError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return fmt.Errorf("%s: %w: %w", op, models.ErrResourceGone, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
