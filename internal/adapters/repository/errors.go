package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrTopicNotFound   = errors.New("topic not found")
	ErrSubjectNotFound = errors.New("subject not found")
)
