// Package dynamo implements the store ports on DynamoDB.
//
// Words live in one table keyed (userId, wordId) with two random-key
// projections: the RandomPoolRandKeyIndex GSI on (randomPool, randKey) for
// the shared pool and the UserRandKeyIndex on (userId, randKey) for per-user
// sampling. Sentences live in their own table keyed by sentenceId with the
// StatusRandKeyIndex GSI on (status, statusRandKey). A GSI is eventually
// consistent and can be absent or backfilling right after deployment; ring
// reads against it surface that as the classified index-unavailable error.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Default index names, matching the provisioning templates.
const (
	DefaultPoolIndex     = "RandomPoolRandKeyIndex"
	DefaultUserIndex     = "UserRandKeyIndex"
	DefaultSentenceIndex = "StatusRandKeyIndex"
)

// NewClient builds a DynamoDB client from the ambient AWS configuration.
func NewClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}
