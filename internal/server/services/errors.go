package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
)

// storeErr classifies an error returned from a repository call. Domain
// errors pass through; anything else is a transient storage failure.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, common.ErrorAlreadyExists):
		var de *common.DetailError
		if errors.As(err, &de) {
			return err
		}
		return common.Detail(common.ErrorAlreadyExists, "username or email already exists")
	default:
		return fmt.Errorf("%s: %w: %w", op, common.ErrorUnavailable, err)
	}
}
