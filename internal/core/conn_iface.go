package core

// Frame is a marshaled outbound event payload.
type Frame []byte

// ConnID identifies one live transport session, unique per process.
type ConnID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() ConnID
	TrySend(Frame) error
	Close()
}
