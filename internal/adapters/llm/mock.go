package llm

import (
	"context"
	"fmt"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// MockTutor is a deterministic local tutor for dev mode and tests.
type MockTutor struct{}

func NewMockTutor() *MockTutor {
	return &MockTutor{}
}

func (m *MockTutor) Reply(_ context.Context, req domain.TutorRequest) (*domain.TutorReply, error) {
	last := ""
	if n := len(req.History); n > 0 {
		last = req.History[n-1].Text
	}

	return &domain.TutorReply{
		Response:    fmt.Sprintf("¡Muy bien! Dijiste %q. ¿Y después?", last),
		Translation: fmt.Sprintf("Very good! You said %q. And then?", last),
		Tip:         fmt.Sprintf("Try answering in a full %s sentence.", req.LanguageName),
	}, nil
}
