package llm

import (
	"encoding/json"
	"strings"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// fallbackTranslation is used when the tutor's reply cannot be decoded.
const fallbackTranslation = "Translation not available"

// ParseReply decodes a raw tutor reply into the structured form. Models
// sometimes wrap the JSON in markdown fences, so those are stripped first.
// A body that still does not decode is not an error: the raw text becomes
// the response and the translation degrades to a fixed placeholder.
func ParseReply(raw string) *domain.TutorReply {
	trimmed := strings.TrimSpace(raw)

	var reply domain.TutorReply
	if err := json.Unmarshal([]byte(stripCodeFence(trimmed)), &reply); err == nil && reply.Response != "" {
		return &reply
	}

	return &domain.TutorReply{
		Response:    trimmed,
		Translation: fallbackTranslation,
	}
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json) and a trailing fence.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return s
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
