package domain

// Turn represents one message in a conversation (user or assistant).
type Turn struct {
	ID             TurnID
	ConversationID ConversationID
	Speaker        Speaker
	Text           string
	CreatedAt      Timestamp

	// Assistant-only metadata. Empty on user turns.
	Translation string
	Tip         string

	// Synthetic marks locally generated turns (greeting, apology) that are
	// shown to the user but never written to the record store.
	Synthetic bool

	// StoreRef is the record store's identifier for this turn, filled in once
	// the insert is acknowledged. The local ID remains the only identity used
	// for ordering and rendering.
	StoreRef string
}

// Conversation represents one ongoing practice session between a user and the tutor.
type Conversation struct {
	ID    ConversationID
	Owner UserID
	Title string

	// Immutable for the conversation's lifetime.
	LanguageCode string
	Difficulty   ProficiencyLevel

	// TurnCount is owned by the session orchestrator and mirrored to the
	// record store. It counts persisted exchanges only (+2 per completed
	// exchange); synthetic turns are excluded. It can drift from the stored
	// copy when a mirror update is lost.
	TurnCount int

	CreatedAt    Timestamp
	LastActivity Timestamp
}
