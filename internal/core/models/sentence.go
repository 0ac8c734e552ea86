package models

import "strings"

// StatusApproved gates which sentences are eligible for practice.
const StatusApproved = "APPROVED"

// Sentence is one translation exercise from the curated sentence pool.
type Sentence struct {
	SentenceID       string   `json:"id" dynamodbav:"sentenceId"`
	PromptBulgarian  string   `json:"promptBulgarian" dynamodbav:"promptBg"`
	CanonicalSpanish string   `json:"-" dynamodbav:"canonicalEs"`
	AcceptedSpanish  []string `json:"-" dynamodbav:"acceptedEs"`
	PersonKey        string   `json:"personKey" dynamodbav:"personKey"`
	Domain           string   `json:"domain" dynamodbav:"domain"`
	Difficulty       int      `json:"difficulty" dynamodbav:"difficulty"`
	Tense            string   `json:"tense" dynamodbav:"tense"`
	Status           string   `json:"-" dynamodbav:"status"`
	StatusRandKey    int64    `json:"-" dynamodbav:"statusRandKey"`
}

// ExpectedAnswers returns the canonical answer and the full accepted list.
// The canonical answer is always part of the accepted set; blank entries in
// the stored list are dropped.
func (s *Sentence) ExpectedAnswers() (string, []string) {
	canonical := strings.TrimSpace(s.CanonicalSpanish)

	accepted := make([]string, 0, len(s.AcceptedSpanish)+1)
	seen := false
	for _, candidate := range s.AcceptedSpanish {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if candidate == canonical {
			seen = true
		}
		accepted = append(accepted, candidate)
	}
	if canonical != "" && !seen {
		accepted = append(accepted, canonical)
	}

	return canonical, accepted
}

// AnswerResult is the outcome of checking a submitted sentence answer.
type AnswerResult struct {
	Status          string `json:"status"`
	IsCorrect       bool   `json:"isCorrect"`
	Message         string `json:"message"`
	CanonicalAnswer string `json:"canonicalAnswer"`
}

const (
	AnswerExact   = "exact"
	AnswerWarning = "warning"
	AnswerWrong   = "wrong"
)
