package review

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks SessionStore

// SessionStore persists active review sessions. Implementations return
// sentinel.ErrNotFound for unknown or expired session IDs.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	SetIndex(ctx context.Context, id string, index int) error
	Delete(ctx context.Context, id string) error
}
