package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
)

// MissingAccountPolicy decides what posting does with an unknown account id.
type MissingAccountPolicy string

const (
	// MissingAccountFallback posts using the raw account id and Unclassified.
	MissingAccountFallback MissingAccountPolicy = "fallback"
	// MissingAccountStrict fails the posting.
	MissingAccountStrict MissingAccountPolicy = "strict"
)

func ParseMissingAccountPolicy(s string) (MissingAccountPolicy, error) {
	switch p := MissingAccountPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MissingAccountFallback, nil
	case MissingAccountFallback, MissingAccountStrict:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown missing account policy %q", apperrors.ErrValidation, s)
	}
}

// DuplicateGenerationPolicy decides what a second generation for the same
// template and date returns.
type DuplicateGenerationPolicy string

const (
	// DuplicateIdempotent returns the entry generated the first time.
	DuplicateIdempotent DuplicateGenerationPolicy = "idempotent"
	// DuplicateReject fails with a conflict.
	DuplicateReject DuplicateGenerationPolicy = "reject"
)

func ParseDuplicateGenerationPolicy(s string) (DuplicateGenerationPolicy, error) {
	switch p := DuplicateGenerationPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateIdempotent, nil
	case DuplicateIdempotent, DuplicateReject:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown duplicate generation policy %q", apperrors.ErrValidation, s)
	}
}
