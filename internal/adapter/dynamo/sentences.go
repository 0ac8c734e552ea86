package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

// SentenceStore implements ports.SentenceStore on the sentences table.
type SentenceStore struct {
	db    *dynamodb.Client
	table string
	index string
}

// NewSentenceStore builds the sentence store. An empty index name falls back
// to the default.
func NewSentenceStore(db *dynamodb.Client, table, index string) *SentenceStore {
	if index == "" {
		index = DefaultSentenceIndex
	}
	return &SentenceStore{db: db, table: table, index: index}
}

// IsIndexUnavailable classifies errors from the status/rand-key projection.
func (s *SentenceStore) IsIndexUnavailable(err error) bool {
	return isIndexUnavailable(err, s.index)
}

// ApprovedPool returns the sampling view of approved sentences.
func (s *SentenceStore) ApprovedPool() sampler.Source[models.Sentence] {
	return sentencePool{store: s}
}

type sentencePool struct {
	store *SentenceStore
}

func (p sentencePool) RingRange(ctx context.Context, op sampler.Op, pivot int64, limit int, token string) ([]models.Sentence, string, error) {
	cmp := ">="
	if op == sampler.OpLT {
		cmp = "<"
	}

	start, err := decodeCursor[sentenceCursor](token)
	if err != nil {
		return nil, "", err
	}

	out, err := p.store.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(p.store.table),
		IndexName:              aws.String(p.store.index),
		KeyConditionExpression: aws.String(fmt.Sprintf("#st = :approved AND statusRandKey %s :pivot", cmp)),
		ExpressionAttributeNames: map[string]string{
			"#st": "status", // reserved word in DynamoDB expressions
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":approved": &types.AttributeValueMemberS{Value: models.StatusApproved},
			":pivot":    &types.AttributeValueMemberN{Value: strconv.FormatInt(pivot, 10)},
		},
		Limit:             aws.Int32(int32(limit)),
		ScanIndexForward:  aws.Bool(true),
		ExclusiveStartKey: start,
	})
	if err != nil {
		return nil, "", fmt.Errorf("query %s: %w", p.store.index, err)
	}

	var sentences []models.Sentence
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &sentences); err != nil {
		return nil, "", fmt.Errorf("decode sentences: %w", err)
	}
	next, err := encodeCursor[sentenceCursor](out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return sentences, next, nil
}

func (p sentencePool) Page(ctx context.Context, size int, token string) ([]models.Sentence, string, error) {
	start, err := decodeCursor[sentenceCursor](token)
	if err != nil {
		return nil, "", err
	}

	out, err := p.store.db.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(p.store.table),
		FilterExpression: aws.String("#st = :approved"),
		ExpressionAttributeNames: map[string]string{
			"#st": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":approved": &types.AttributeValueMemberS{Value: models.StatusApproved},
		},
		Limit:             aws.Int32(int32(size)),
		ExclusiveStartKey: start,
	})
	if err != nil {
		return nil, "", fmt.Errorf("scan sentences: %w", err)
	}

	var sentences []models.Sentence
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &sentences); err != nil {
		return nil, "", fmt.Errorf("decode sentences: %w", err)
	}
	next, err := encodeCursor[sentenceCursor](out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return sentences, next, nil
}

// GetSentence returns the sentence with the given id, or nil when absent.
func (s *SentenceStore) GetSentence(ctx context.Context, sentenceID string) (*models.Sentence, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"sentenceId": &types.AttributeValueMemberS{Value: sentenceID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get sentence %q: %w", sentenceID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var sentence models.Sentence
	if err := attributevalue.UnmarshalMap(out.Item, &sentence); err != nil {
		return nil, fmt.Errorf("decode sentence %q: %w", sentenceID, err)
	}
	return &sentence, nil
}
