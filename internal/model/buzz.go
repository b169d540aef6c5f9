package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IgnoreScope controls how long an ignore entry lives.
type IgnoreScope string

const (
	// IgnoreScopeSession lasts for one presence activation and is cleared
	// on deactivate/re-activate. Session ignores are held in memory.
	IgnoreScopeSession IgnoreScope = "SESSION"
	// IgnoreScopePermanent survives restarts.
	IgnoreScopePermanent IgnoreScope = "PERMANENT"
)

// MatchSource identifies which feature created a match.
const MatchSourceMicroBuzz = "microbuzz"

// BuzzSignal is a one-directional interest signal. At most one live row per
// ordered (from, to) pair; the row is consumed when the pair matches.
type BuzzSignal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FromID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_buzz_pair" json:"fromId"`
	ToID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_buzz_pair;index:idx_buzz_to" json:"toId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (BuzzSignal) TableName() string {
	return "buzz_signals"
}

// Match is the durable record of mutual interest. One row per unordered
// pair: UserA is always the lexicographically smaller of the two IDs and
// the (user_a, user_b) unique index is the at-most-once backstop.
type Match struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"matchId"`
	UserA     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair;index:idx_match_user_a" json:"userA"`
	UserB     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair;index:idx_match_user_b" json:"userB"`
	RoomID    uuid.UUID `gorm:"type:uuid;not null" json:"roomId"`
	Source    string    `gorm:"type:varchar(20);not null" json:"source"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (Match) TableName() string {
	return "matches"
}

// Peer returns the other side of the match for the given user.
func (m *Match) Peer(userID uuid.UUID) uuid.UUID {
	if m.UserA == userID {
		return m.UserB
	}
	return m.UserA
}

// IgnoreEntry is a permanent per-viewer suppression of a candidate.
// Session-scoped ignores never reach the database.
type IgnoreEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ViewerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ignore_pair" json:"viewerId"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ignore_pair" json:"subjectId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (IgnoreEntry) TableName() string {
	return "ignore_entries"
}

// SortPair orders two user IDs lexicographically. Matches, pair locks and
// room IDs all key off the sorted pair so both directions agree.
func SortPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

// roomNamespace seeds deterministic room IDs. Never change it: both sides
// of a match derive the room independently and must agree.
var roomNamespace = uuid.MustParse("7c9e3a52-11d4-4bfb-9c40-6f1b2a8d0e35")

// RoomID derives the chat room identifier for a pair. Deterministic over
// the sorted pair, so either submit order yields the same room.
func RoomID(a, b uuid.UUID) uuid.UUID {
	ua, ub := SortPair(a, b)
	return uuid.NewSHA1(roomNamespace, []byte(ua.String()+":"+ub.String()))
}

// PairKey is the string form of the sorted pair, used to key the pair locks.
func PairKey(a, b uuid.UUID) string {
	ua, ub := SortPair(a, b)
	return ua.String() + ":" + ub.String()
}
