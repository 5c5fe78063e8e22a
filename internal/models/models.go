package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ChatMessage is one entry of a prompt sent to a provider.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the normalised form of a single user action.
type CompletionRequest struct {
	InputText   string
	Command     string
	Instruction string
	Language    string
	Format      string
}

// TextDelta is one incremental fragment of a streamed completion.
type TextDelta struct {
	Text string `json:"text"`
}

// Join concatenates deltas in emission order.
func Join(deltas []TextDelta) string {
	n := 0
	for _, d := range deltas {
		n += len(d.Text)
	}
	buf := make([]byte, 0, n)
	for _, d := range deltas {
		buf = append(buf, d.Text...)
	}
	return string(buf)
}
