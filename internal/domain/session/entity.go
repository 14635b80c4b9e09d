package session

import "time"

// State is the position of a chat in the analysis dialog
type State string

const (
	StateIdle             State = "idle"
	StateChoosingCurrency State = "choosing_currency"
	StateChoosingDays     State = "choosing_days"
	StateProcessing       State = "processing"
)

// TTL is how long an abandoned dialog survives before Redis drops it
const TTL = 30 * time.Minute

// Session is the per-chat dialog state. It lives in Redis so a restart does
// not lose dialogs in progress.
type Session struct {
	ChatID    int64     `json:"chat_id"`
	State     State     `json:"state"`
	Currency  string    `json:"currency,omitempty"`
	Days      int       `json:"days,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an idle session for a chat
func New(chatID int64) *Session {
	return &Session{
		ChatID:    chatID,
		State:     StateIdle,
		UpdatedAt: time.Now(),
	}
}

// Transition moves the session to a new state
func (s *Session) Transition(state State) {
	s.State = state
	s.UpdatedAt = time.Now()
}

// Reset clears the dialog back to idle
func (s *Session) Reset() {
	s.State = StateIdle
	s.Currency = ""
	s.Days = 0
	s.UpdatedAt = time.Now()
}
