package advisor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes markdown code fences that models wrap around
// JSON output despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func decodeJSON(raw string, out any) error {
	if err := json.Unmarshal([]byte(stripFences(raw)), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
