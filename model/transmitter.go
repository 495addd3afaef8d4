package model

import "fmt"

// DelayRange bounds the random delay between consecutive transmissions,
// in seconds. Valid when 0 < Min <= Max.
type DelayRange struct {
	Min float64
	Max float64
}

// Validate reports whether the range is usable.
func (d DelayRange) Validate() error {
	if d.Min <= 0 {
		return fmt.Errorf("delay range min must be positive, got %v", d.Min)
	}
	if d.Max < d.Min {
		return fmt.Errorf("delay range max %v is below min %v", d.Max, d.Min)
	}
	return nil
}

// Mean returns the expected inter-transmission delay.
func (d DelayRange) Mean() float64 {
	return (d.Min + d.Max) / 2
}

// TransmitterSpec describes the tag carried by a simulated animal.
type TransmitterSpec struct {
	// Velocity is the travel speed along the path, in distance units per second.
	Velocity float64
	// Delay bounds the random interval between transmissions.
	Delay DelayRange
	// BurstDuration is the length of one signal burst in seconds. It is
	// carried through to collision analysis and does not affect timing of
	// the emission schedule itself.
	BurstDuration float64
}

// Validate reports whether the spec is usable.
func (s TransmitterSpec) Validate() error {
	if s.Velocity <= 0 {
		return fmt.Errorf("velocity must be positive, got %v", s.Velocity)
	}
	if s.BurstDuration < 0 {
		return fmt.Errorf("burst duration must be non-negative, got %v", s.BurstDuration)
	}
	return s.Delay.Validate()
}
