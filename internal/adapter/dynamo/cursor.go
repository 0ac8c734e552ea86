package dynamo

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/goccy/go-json"
)

// wordCursor is the serializable form of a words-table LastEvaluatedKey.
// Depending on which projection was read it carries the table key plus the
// index key; absent attributes stay omitted.
type wordCursor struct {
	UserID     string `json:"u,omitempty" dynamodbav:"userId,omitempty"`
	WordID     string `json:"w,omitempty" dynamodbav:"wordId,omitempty"`
	RandomPool string `json:"p,omitempty" dynamodbav:"randomPool,omitempty"`
	RandKey    int64  `json:"k,omitempty" dynamodbav:"randKey,omitempty"`
}

type sentenceCursor struct {
	SentenceID    string `json:"s,omitempty" dynamodbav:"sentenceId,omitempty"`
	Status        string `json:"st,omitempty" dynamodbav:"status,omitempty"`
	StatusRandKey int64  `json:"k,omitempty" dynamodbav:"statusRandKey,omitempty"`
}

// encodeCursor turns a LastEvaluatedKey into the opaque continuation token
// handed to the sampling engine. An empty key means the read is exhausted.
func encodeCursor[T any](key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}
	var cursor T
	if err := attributevalue.UnmarshalMap(key, &cursor); err != nil {
		return "", fmt.Errorf("decode evaluated key: %w", err)
	}
	raw, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// decodeCursor rebuilds the ExclusiveStartKey from a continuation token.
func decodeCursor[T any](token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed continuation token: %w", err)
	}
	var cursor T
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, fmt.Errorf("malformed continuation token: %w", err)
	}
	key, err := attributevalue.MarshalMap(cursor)
	if err != nil {
		return nil, fmt.Errorf("encode start key: %w", err)
	}
	return key, nil
}
