package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

const maxContentBytes = 64 * 1024

var tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateSenderRole checks the role against the closed set
func ValidateSenderRole(role string) error {
	switch strings.ToLower(role) {
	case "owner", "provider":
		return nil
	}
	return fmt.Errorf("invalid sender role: %s (allowed: owner, provider)", role)
}

// ValidateMessageKind checks the kind against the closed set
func ValidateMessageKind(kind string) error {
	switch strings.ToLower(kind) {
	case "", "text", "image", "document", "bid_submission", "system":
		return nil
	}
	return fmt.Errorf("invalid message kind: %s", kind)
}

// ValidateContent bounds message size before it reaches the pipeline
func ValidateContent(content string) error {
	if len(content) > maxContentBytes {
		return fmt.Errorf("content exceeds %d bytes", maxContentBytes)
	}
	return nil
}

// SanitizeString removes null bytes and control characters
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
