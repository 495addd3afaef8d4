package model

// TransmissionEvent is one discrete signal emission along a path.
// Events are produced in strictly increasing ElapsedTime order with
// sequential IDs starting at 0.
type TransmissionEvent struct {
	ID            int
	Position      Point
	ElapsedTime   float64
	BurstDuration float64
}

// DetectionRecord is emitted when a stochastic trial for one
// (transmission, receiver) pair succeeds. A transmission yields at most one
// record per receiver. Result sets are sorted by ElapsedTime ascending.
type DetectionRecord struct {
	TransmissionID       int
	ReceiverID           int
	ReceiverPosition     Point
	TransmissionPosition Point
	ElapsedTime          float64
}
