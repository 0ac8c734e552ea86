package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wordbridge/wordbridge/internal/core/models"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

const (
	batchWriteChunk    = 25
	batchWriteAttempts = 3
)

// WordStore implements ports.WordStore on the words table.
type WordStore struct {
	db        *dynamodb.Client
	table     string
	poolIndex string
	userIndex string
}

// NewWordStore builds the word store. Empty index names fall back to the
// defaults.
func NewWordStore(db *dynamodb.Client, table, poolIndex, userIndex string) *WordStore {
	if poolIndex == "" {
		poolIndex = DefaultPoolIndex
	}
	if userIndex == "" {
		userIndex = DefaultUserIndex
	}
	return &WordStore{db: db, table: table, poolIndex: poolIndex, userIndex: userIndex}
}

// IsIndexUnavailable classifies errors from either random-key projection.
func (s *WordStore) IsIndexUnavailable(err error) bool {
	return isIndexUnavailable(err, s.poolIndex, s.userIndex)
}

// GlobalPool returns the sampling view of the shared word pool. Its scan
// fallback filters the whole table on the pool attribute.
func (s *WordStore) GlobalPool() sampler.Source[models.Word] {
	return &wordPool{store: s, index: s.poolIndex, keyAttr: "randomPool", keyValue: models.GlobalPool, scanFallback: true}
}

// UserPool returns the sampling view of one user's words. Its scan fallback
// queries the user's base-table partition directly.
func (s *WordStore) UserPool(userID string) sampler.Source[models.Word] {
	return &wordPool{store: s, index: s.userIndex, keyAttr: "userId", keyValue: userID}
}

type wordPool struct {
	store        *WordStore
	index        string
	keyAttr      string
	keyValue     string
	scanFallback bool
}

func (p *wordPool) RingRange(ctx context.Context, op sampler.Op, pivot int64, limit int, token string) ([]models.Word, string, error) {
	cmp := ">="
	if op == sampler.OpLT {
		cmp = "<"
	}

	start, err := decodeCursor[wordCursor](token)
	if err != nil {
		return nil, "", err
	}

	out, err := p.store.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(p.store.table),
		IndexName:              aws.String(p.index),
		KeyConditionExpression: aws.String(fmt.Sprintf("#pk = :pk AND #rk %s :pivot", cmp)),
		ExpressionAttributeNames: map[string]string{
			"#pk": p.keyAttr,
			"#rk": "randKey",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":    &types.AttributeValueMemberS{Value: p.keyValue},
			":pivot": &types.AttributeValueMemberN{Value: strconv.FormatInt(pivot, 10)},
		},
		Limit:             aws.Int32(int32(limit)),
		ScanIndexForward:  aws.Bool(true),
		ExclusiveStartKey: start,
	})
	if err != nil {
		return nil, "", fmt.Errorf("query %s: %w", p.index, err)
	}

	var words []models.Word
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &words); err != nil {
		return nil, "", fmt.Errorf("decode words: %w", err)
	}
	next, err := encodeCursor[wordCursor](out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return words, next, nil
}

func (p *wordPool) Page(ctx context.Context, size int, token string) ([]models.Word, string, error) {
	start, err := decodeCursor[wordCursor](token)
	if err != nil {
		return nil, "", err
	}

	var (
		items []map[string]types.AttributeValue
		last  map[string]types.AttributeValue
	)
	if p.scanFallback {
		out, err := p.store.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(p.store.table),
			FilterExpression: aws.String("#pk = :pk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": p.keyAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: p.keyValue},
			},
			Limit:             aws.Int32(int32(size)),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, "", fmt.Errorf("scan words: %w", err)
		}
		items, last = out.Items, out.LastEvaluatedKey
	} else {
		out, err := p.store.db.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(p.store.table),
			KeyConditionExpression: aws.String("#pk = :pk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": p.keyAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: p.keyValue},
			},
			Limit:             aws.Int32(int32(size)),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, "", fmt.Errorf("query word partition: %w", err)
		}
		items, last = out.Items, out.LastEvaluatedKey
	}

	var words []models.Word
	if err := attributevalue.UnmarshalListOfMaps(items, &words); err != nil {
		return nil, "", fmt.Errorf("decode words: %w", err)
	}
	next, err := encodeCursor[wordCursor](last)
	if err != nil {
		return nil, "", err
	}
	return words, next, nil
}

// PutWord upserts one word. The random pool attributes are written with
// if_not_exists, so an existing item keeps the random key it was created
// with and stays where it is in the ring.
func (s *WordStore) PutWord(ctx context.Context, word models.Word) error {
	updatedAt, err := attributevalue.Marshal(word.UpdatedAt)
	if err != nil {
		return fmt.Errorf("encode updatedAt: %w", err)
	}

	_, err = s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: word.UserID},
			"wordId": &types.AttributeValueMemberS{Value: word.WordID},
		},
		UpdateExpression: aws.String(
			"SET spanish = :spanish, bulgarian = :bulgarian, updatedAt = :updatedAt, " +
				"createdBy = :createdBy, randomPool = if_not_exists(randomPool, :randomPool), " +
				"randKey = if_not_exists(randKey, :randKey)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":spanish":    &types.AttributeValueMemberS{Value: word.Spanish},
			":bulgarian":  &types.AttributeValueMemberS{Value: word.Bulgarian},
			":updatedAt":  updatedAt,
			":createdBy":  &types.AttributeValueMemberS{Value: word.CreatedBy},
			":randomPool": &types.AttributeValueMemberS{Value: word.RandomPool},
			":randKey":    &types.AttributeValueMemberN{Value: strconv.FormatInt(word.RandKey, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("update word %q: %w", word.WordID, err)
	}
	return nil
}

// BulkPutWords writes a batch of words, preserving the random attributes of
// items that already exist. BatchWriteItem replaces items wholesale, so
// existing random keys are resolved with a projection read first.
func (s *WordStore) BulkPutWords(ctx context.Context, words []models.Word) error {
	requests := make([]types.WriteRequest, 0, len(words))
	for _, word := range words {
		pool, randKey, err := s.existingRandomAttrs(ctx, word.UserID, word.WordID)
		if err != nil {
			return err
		}
		if pool != "" && randKey != 0 {
			word.RandomPool = pool
			word.RandKey = randKey
		}
		item, err := attributevalue.MarshalMap(word)
		if err != nil {
			return fmt.Errorf("encode word %q: %w", word.WordID, err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	for start := 0; start < len(requests); start += batchWriteChunk {
		end := start + batchWriteChunk
		if end > len(requests) {
			end = len(requests)
		}
		if err := s.writeBatch(ctx, requests[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *WordStore) writeBatch(ctx context.Context, batch []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.table: batch}
	for attempt := 0; attempt < batchWriteAttempts; attempt++ {
		out, err := s.db.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("batch write words: %w", err)
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		pending = out.UnprocessedItems

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("batch write words: unprocessed items after %d attempts", batchWriteAttempts)
}

func (s *WordStore) existingRandomAttrs(ctx context.Context, userID, wordID string) (string, int64, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
			"wordId": &types.AttributeValueMemberS{Value: wordID},
		},
		ProjectionExpression: aws.String("randomPool, randKey"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("get word %q: %w", wordID, err)
	}
	if out.Item == nil {
		return "", 0, nil
	}

	var existing wordCursor
	if err := attributevalue.UnmarshalMap(out.Item, &existing); err != nil {
		return "", 0, fmt.Errorf("decode word %q: %w", wordID, err)
	}
	return existing.RandomPool, existing.RandKey, nil
}

// UserWords exports one user's full partition, following continuation tokens
// until the store reports none.
func (s *WordStore) UserWords(ctx context.Context, userID string) ([]models.Word, error) {
	var (
		words []models.Word
		start map[string]types.AttributeValue
	)
	for {
		out, err := s.db.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("userId = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("query user words: %w", err)
		}

		var page []models.Word
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("decode words: %w", err)
		}
		words = append(words, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return words, nil
		}
		start = out.LastEvaluatedKey
	}
}
