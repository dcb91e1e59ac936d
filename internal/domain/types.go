package domain

import "time"

type ConversationID string
type UserID string
type TurnID string

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

type ProficiencyLevel string

const (
	LevelBeginner     ProficiencyLevel = "Beginner"
	LevelIntermediate ProficiencyLevel = "Intermediate"
	LevelAdvanced     ProficiencyLevel = "Advanced"
)

// ParseProficiencyLevel normalizes user-supplied level strings, defaulting to Beginner.
func ParseProficiencyLevel(s string) ProficiencyLevel {
	switch s {
	case string(LevelIntermediate), "intermediate":
		return LevelIntermediate
	case string(LevelAdvanced), "advanced":
		return LevelAdvanced
	default:
		return LevelBeginner
	}
}

type Timestamp = time.Time
