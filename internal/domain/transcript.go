package domain

import "time"

// Role identifies who authored a turn
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one role-tagged unit of conversation text
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered turn history of a session.
// Messages are kept in insertion order and replayed verbatim.
type Transcript struct {
	Messages    []Turn    `json:"messages"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewTranscript returns an empty transcript
func NewTranscript() Transcript {
	return Transcript{Messages: []Turn{}}
}

// Append adds turns to the end of the transcript
func (t *Transcript) Append(turns ...Turn) {
	t.Messages = append(t.Messages, turns...)
}

// Clone returns a copy that shares no backing array with t
func (t Transcript) Clone() Transcript {
	messages := make([]Turn, len(t.Messages))
	copy(messages, t.Messages)
	return Transcript{Messages: messages, LastUpdated: t.LastUpdated}
}

// Len returns the number of turns
func (t Transcript) Len() int {
	return len(t.Messages)
}

// SameAs reports whether two transcripts hold the same turns and timestamp
func (t Transcript) SameAs(other Transcript) bool {
	if len(t.Messages) != len(other.Messages) || !t.LastUpdated.Equal(other.LastUpdated) {
		return false
	}
	for i := range t.Messages {
		if t.Messages[i] != other.Messages[i] {
			return false
		}
	}
	return true
}

// UserTurn builds a user-authored turn
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// ModelTurn builds a model-generated turn
func ModelTurn(content string) Turn {
	return Turn{Role: RoleModel, Content: content}
}
