package domain

type (
	RoomID   string
	RoomName string
)

// Room metadata (name, participants, privacy) lives in the document store;
// the realtime layer only tracks which live connections are joined.
type Room struct {
	ID   RoomID   `json:"id"`
	Name RoomName `json:"name"`
}
