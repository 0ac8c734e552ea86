package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// GlobalPool is the shared random pool every saved word belongs to.
	GlobalPool = "GLOBAL"

	maxWordFieldLen = 120
)

var (
	ErrMissingWordField = errors.New("both 'spanish' and 'bulgarian' fields are required")
	ErrWordFieldTooLong = errors.New("each field must be 120 characters or fewer")
)

// Word is one vocabulary entry. The word id is the lowercased Spanish text,
// so re-saving the same word updates it in place. RandomPool and RandKey are
// assigned once at creation and must not be rewritten on update.
type Word struct {
	UserID     string    `json:"-" dynamodbav:"userId"`
	WordID     string    `json:"id" dynamodbav:"wordId"`
	Spanish    string    `json:"spanish" dynamodbav:"spanish"`
	Bulgarian  string    `json:"bulgarian" dynamodbav:"bulgarian"`
	CreatedBy  string    `json:"-" dynamodbav:"createdBy"`
	UpdatedAt  time.Time `json:"-" dynamodbav:"updatedAt"`
	RandomPool string    `json:"-" dynamodbav:"randomPool"`
	RandKey    int64     `json:"-" dynamodbav:"randKey"`
}

// NewWord validates the translation pair and builds a word owned by userID.
// Random attributes are left zero; the caller assigns candidate values.
func NewWord(userID, spanish, bulgarian string) (Word, error) {
	spanish = strings.TrimSpace(spanish)
	bulgarian = strings.TrimSpace(bulgarian)

	if spanish == "" || bulgarian == "" {
		return Word{}, ErrMissingWordField
	}
	if utf8.RuneCountInString(spanish) > maxWordFieldLen ||
		utf8.RuneCountInString(bulgarian) > maxWordFieldLen {
		return Word{}, ErrWordFieldTooLong
	}

	return Word{
		UserID:    userID,
		WordID:    strings.ToLower(spanish),
		Spanish:   spanish,
		Bulgarian: bulgarian,
		CreatedBy: userID,
		UpdatedAt: time.Now().UTC(),
	}, nil
}
