package ws

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

// server → client
type ScorePayload struct {
	Type            string `json:"type"`
	GameID          string `json:"gameId"`
	CanonicalUserID string `json:"canonicalUserId"`
	DisplayName     string `json:"displayName,omitempty"`
	Score           int    `json:"score"`
	Verified        bool   `json:"verified"`
}
