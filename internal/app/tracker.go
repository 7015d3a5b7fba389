package app

import (
	"sync"
	"time"

	"github.com/avelis/pulse/internal/domain"
)

type trackerKey struct {
	Room domain.RoomID
	User domain.UserID
}

// Tracker maintains per-(room, user) unread counters. Entries are created
// lazily on first increment; absence means zero unread.
type Tracker struct {
	mu    sync.Mutex
	byKey map[trackerKey]*domain.MessageTracker
}

func NewTracker() *Tracker {
	return &Tracker{byKey: make(map[trackerKey]*domain.MessageTracker)}
}

// Increment bumps the counter by one and returns the new count.
func (t *Tracker) Increment(roomID domain.RoomID, userID domain.UserID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := trackerKey{Room: roomID, User: userID}
	tr, ok := t.byKey[key]
	if !ok {
		tr = &domain.MessageTracker{
			RoomID:            roomID,
			UserID:            userID,
			LastReadTimestamp: time.Now(),
		}
		t.byKey[key] = tr
	}
	tr.UnreadCount++
	return tr.UnreadCount
}

// MarkRead resets the counter to zero. A missing tracker means the user
// never received a trackable message; that is already-read, not an error.
func (t *Tracker) MarkRead(roomID domain.RoomID, userID domain.UserID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.byKey[trackerKey{Room: roomID, User: userID}]
	if !ok {
		return 0
	}
	tr.UnreadCount = 0
	tr.LastReadTimestamp = time.Now()
	return 0
}

// Get returns the current count, zero when no tracker exists.
func (t *Tracker) Get(roomID domain.RoomID, userID domain.UserID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tr, ok := t.byKey[trackerKey{Room: roomID, User: userID}]; ok {
		return tr.UnreadCount
	}
	return 0
}
