package dynamo

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// isIndexUnavailable reports whether a store error means a secondary index is
// missing or still backfilling, the one condition the sampling engine may
// recover from by scanning. DynamoDB signals it inconsistently: a
// ValidationException while the GSI backfills, a ResourceNotFoundException
// when it does not exist yet, with the detail buried in the message. Any
// failure outside those shapes is a fatal store fault and must propagate.
// Classification is pure string/code inspection, so the same error always
// classifies the same way.
func isIndexUnavailable(err error, indexNames ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "ValidationException", "ResourceNotFoundException":
	default:
		return false
	}

	msg := strings.ToLower(apiErr.ErrorMessage())
	if strings.Contains(msg, "backfilling global secondary index") ||
		strings.Contains(msg, "does not have the specified index") {
		return true
	}
	for _, name := range indexNames {
		if name != "" && strings.Contains(msg, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
