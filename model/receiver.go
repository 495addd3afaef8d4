package model

// Receiver is a fixed listening station. The receiver set is immutable for
// the duration of one simulation run.
type Receiver struct {
	ID       int
	Position Point
}
