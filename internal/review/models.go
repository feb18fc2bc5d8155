package review

import "time"

// Session is the per-reviewer navigation state. It lives only for the
// lifetime of a login; verdicts themselves are persisted separately.
type Session struct {
	ID           string    `json:"id"`
	Reviewer     string    `json:"reviewer"`
	CurrentIndex int       `json:"current_index"`
	CreatedAt    time.Time `json:"created_at"`
}
