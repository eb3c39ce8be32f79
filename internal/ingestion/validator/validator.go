// Package validator enforces size limits on book ingestion requests. Empty
// titles, authors and subject lists are accepted; the catalog takes any
// strings.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion"
)

const (
	maxTitleLength   = 1024
	maxAuthorLength  = 1024
	maxSubjects      = 64
	maxSubjectLength = 256
	maxKeyLength     = 128
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

// ValidateBookRequest checks field lengths and the subject count and returns
// a ValidationError if any limit is exceeded.
func ValidateBookRequest(req *ingestion.BookRequest) error {
	errs := make(map[string]string)

	if len(req.Title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d bytes", maxTitleLength)
	}
	if len(req.Author) > maxAuthorLength {
		errs["author"] = fmt.Sprintf("author must be at most %d bytes", maxAuthorLength)
	}
	if len(req.Subjects) > maxSubjects {
		errs["subjects"] = fmt.Sprintf("at most %d subjects are allowed", maxSubjects)
	} else {
		for i, s := range req.Subjects {
			if len(s) > maxSubjectLength {
				errs[fmt.Sprintf("subjects[%d]", i)] = fmt.Sprintf("subject must be at most %d bytes", maxSubjectLength)
			}
		}
	}
	if len(req.IdempotencyKey) > maxKeyLength {
		errs["idempotency_key"] = fmt.Sprintf("idempotency key must be at most %d bytes", maxKeyLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
