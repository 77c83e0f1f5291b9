package models

import "time"

// Friendship statuses. Exactly one row exists per unordered user pair,
// regardless of status.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusBlocked  = "blocked"
)

// ValidStatus reports whether s is a known friendship status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusAccepted || s == StatusBlocked
}

// Friendship is the persisted per-pair aggregate: status plus cumulative
// interaction statistics used by the ranking surface.
type Friendship struct {
	ID                   int64      `db:"id" json:"id"`
	UserID               int64      `db:"user_id" json:"user_id"`
	FriendID             int64      `db:"friend_id" json:"friend_id"`
	Status               string     `db:"status" json:"status"`
	IntimacyScore        float64    `db:"intimacy_score" json:"intimacy_score"`
	InteractionCount     int64      `db:"interaction_count" json:"interaction_count"`
	PositiveInteractions int64      `db:"positive_interactions" json:"positive_interactions"`
	NegativeInteractions int64      `db:"negative_interactions" json:"negative_interactions"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            *time.Time `db:"updated_at" json:"updated_at"`
}

// Friend is the per-friend view returned by the friends list: the other
// party's identity joined with the pair's aggregate.
type Friend struct {
	ID            int64   `db:"friend_id" json:"id"`
	Username      string  `db:"username" json:"username"`
	FullName      *string `db:"full_name" json:"full_name"`
	IntimacyScore float64 `db:"intimacy_score" json:"intimacy_score"`
	Status        string  `db:"status" json:"status"`
}

// FriendLink pairs a friendship row with the other party's identity. Used by
// the ranking aggregation, which needs the full aggregate per friend.
type FriendLink struct {
	FriendID   int64
	Username   string
	FullName   *string
	Friendship Friendship
}
