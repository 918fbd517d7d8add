package coding

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// notBlank rejects strings that are empty after trimming
var notBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
})

// validSpan checks a half-open [start, end) range against a document length in characters
func validSpan(start, end, length int) error {
	if start < 0 || end <= start {
		return fmt.Errorf("span [%d, %d) is empty or inverted", start, end)
	}
	if end > length {
		return fmt.Errorf("span [%d, %d) is outside document bounds (length %d)", start, end, length)
	}
	return nil
}

// cleanItems trims items and drops blank ones
func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
