package validation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidSlug is returned when a slug doesn't match the required format
	ErrInvalidSlug = errors.New("invalid slug format")

	// ErrSlugTooShort is returned when a slug is too short
	ErrSlugTooShort = errors.New("slug must be at least 3 characters")

	// ErrSlugTooLong is returned when a slug is too long
	ErrSlugTooLong = errors.New("slug must be at most 64 characters")

	// slugRegex validates slug format: starts and ends with alphanumeric, can contain hyphens
	// Format: ^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$
	slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

	// skuRegex validates product SKUs: uppercase alphanumeric with hyphens,
	// e.g. TL-MEMBER-12M
	skuRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,62}[A-Z0-9]$`)
)

// ValidateSlug validates a membership level slug:
// - Must be 3-64 characters long
// - Must start and end with lowercase alphanumeric (a-z, 0-9)
// - Can contain hyphens in the middle
// - No uppercase, no underscores, no other special characters
func ValidateSlug(slug string) error {
	// Normalize to lowercase
	slug = strings.ToLower(strings.TrimSpace(slug))

	// Check length
	if len(slug) < 3 {
		return ErrSlugTooShort
	}
	if len(slug) > 64 {
		return ErrSlugTooLong
	}

	// Check format
	if !slugRegex.MatchString(slug) {
		return ErrInvalidSlug
	}

	return nil
}

// NormalizeSlug normalizes a slug by converting to lowercase and trimming whitespace
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSKU validates a product SKU: 3-64 characters, uppercase
// alphanumeric with hyphens in the middle.
func ValidateSKU(sku string) error {
	sku = strings.TrimSpace(sku)

	if len(sku) < 3 {
		return errors.New("SKU must be at least 3 characters")
	}
	if len(sku) > 64 {
		return errors.New("SKU must be at most 64 characters")
	}

	if !skuRegex.MatchString(sku) {
		return errors.New("invalid SKU format")
	}

	return nil
}
