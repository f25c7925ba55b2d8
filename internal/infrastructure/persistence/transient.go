package persistence

import (
	"context"
	"errors"
	"net"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// transientCodes are AWS error codes worth retrying.
var transientCodes = map[string]struct{}{
	"ThrottlingException":                    {},
	"Throttling":                             {},
	"TooManyRequestsException":               {},
	"ProvisionedThroughputExceededException": {},
	"RequestLimitExceeded":                   {},
	"InternalServerError":                    {},
	"InternalFailure":                        {},
	"ServiceUnavailable":                     {},
	"RequestTimeout":                         {},
	"RequestTimeoutException":                {},
	"TransactionInProgressException":         {},
	"SlowDown":                               {},
}

// IsTransient reports whether err is a throttle, timeout or availability
// failure that a retry may cure. Condition failures and cancelled contexts
// are never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrConditionFailed) || errors.Is(err, context.Canceled) {
		return false
	}

	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		_, ok := transientCodes[apiErr.ErrorCode()]
		return ok
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
