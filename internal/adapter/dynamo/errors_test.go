package dynamo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

func TestIsIndexUnavailable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			"backfilling gsi",
			apiError("ValidationException", "Cannot read from backfilling global secondary index: RandomPoolRandKeyIndex"),
			true,
		},
		{
			"missing index",
			apiError("ValidationException", "The table does not have the specified index: RandomPoolRandKeyIndex"),
			true,
		},
		{
			"resource not found naming the index",
			apiError("ResourceNotFoundException", "Requested resource not found: index RandomPoolRandKeyIndex does not exist"),
			true,
		},
		{
			"validation error unrelated to the index",
			apiError("ValidationException", "One or more parameter values were invalid"),
			false,
		},
		{
			"throttling",
			apiError("ProvisionedThroughputExceededException", "rate exceeded"),
			false,
		},
		{
			"wrapped classified error",
			fmt.Errorf("query RandomPoolRandKeyIndex: %w",
				apiError("ResourceNotFoundException", "requested resource not found: randompoolrandkeyindex")),
			true,
		},
		{
			"plain error",
			errors.New("connection reset"),
			false,
		},
		{
			"nil",
			nil,
			false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isIndexUnavailable(c.err, DefaultPoolIndex, DefaultUserIndex); got != c.want {
				t.Fatalf("isIndexUnavailable(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

// Classification must be a pure function of the error value.
func TestClassificationIsIdempotent(t *testing.T) {
	err := apiError("ResourceNotFoundException", "index RandomPoolRandKeyIndex does not exist")
	first := isIndexUnavailable(err, DefaultPoolIndex)
	for i := 0; i < 10; i++ {
		if got := isIndexUnavailable(err, DefaultPoolIndex); got != first {
			t.Fatalf("classification changed between calls")
		}
	}
	if !first {
		t.Fatalf("expected the error to classify as index-unavailable")
	}
}
