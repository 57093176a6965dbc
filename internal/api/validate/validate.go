package validate

import (
	"fmt"
	"strings"
	"unicode"
)

// Title validates a conversation or recording title:
// - 1-120 bytes
// - no control characters
// - no leading/trailing space
func Title(v string) error {
	if v == "" {
		return fmt.Errorf("title is required")
	}
	if len(v) > 120 {
		return fmt.Errorf("title exceeds 120 characters")
	}
	if strings.TrimSpace(v) != v {
		return fmt.Errorf("title must not have leading or trailing spaces")
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("title contains control characters")
		}
	}
	return nil
}

// DraftFormat validates the requested draft output format.
func DraftFormat(v string) error {
	switch v {
	case "tweet", "blog", "article":
		return nil
	}
	return fmt.Errorf("format must be one of tweet, blog, article")
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}
