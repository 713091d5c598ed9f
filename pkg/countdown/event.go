package countdown

// EventType is the type of the events emitted by the countdown.
type EventType int

const (
	// CountdownTick is emitted once per tick while the remaining time is
	// greater than zero.
	CountdownTick EventType = iota
	// CountdownExpired is emitted exactly once, the first time the
	// remaining time reaches zero.
	CountdownExpired
)

func (t EventType) String() string {
	switch t {
	case CountdownTick:
		return "CountdownTick"
	case CountdownExpired:
		return "CountdownExpired"
	default:
		return "Unknown"
	}
}

// Event are emitted through a channel while counting down.
type Event interface {
	Type() EventType
}

// TickEvent carries the remaining time in whole seconds.
type TickEvent struct {
	Remaining int64
}

// Type returns the type of the event.
func (e TickEvent) Type() EventType {
	return CountdownTick
}

// ExpireEvent signals that the deadline has been reached.
type ExpireEvent struct{}

// Type returns the type of the event.
func (e ExpireEvent) Type() EventType {
	return CountdownExpired
}
