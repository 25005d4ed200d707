package playback

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Speed is the playback multiplier chosen on the slider.
type Speed float64

const (
	MinSpeed     Speed = 0.5
	MaxSpeed     Speed = 3.0
	SpeedStep    Speed = 0.5
	DefaultSpeed Speed = 1.0
)

const (
	// BasePeriod is the tick period at 1x.
	BasePeriod = 500 * time.Millisecond
	// MinPeriod floors the tick period regardless of speed.
	MinPeriod = 50 * time.Millisecond
)

var ErrInvalidSpeed = errors.New("invalid speed")

// ParseSpeed accepts the values the slider can produce: MinSpeed to MaxSpeed
// in SpeedStep increments.
func ParseSpeed(v float64) (Speed, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSpeed, v)
	}
	if v < float64(MinSpeed) || v > float64(MaxSpeed) {
		return 0, fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidSpeed, v, MinSpeed, MaxSpeed)
	}
	steps := v / float64(SpeedStep)
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return 0, fmt.Errorf("%w: %v is not a multiple of %v", ErrInvalidSpeed, v, SpeedStep)
	}
	return Speed(v), nil
}

// Period returns max(MinPeriod, floor(BasePeriod / speed)) in whole
// milliseconds.
func Period(s Speed) time.Duration {
	if s <= 0 || math.IsNaN(float64(s)) {
		return BasePeriod
	}
	ms := math.Floor(float64(BasePeriod/time.Millisecond) / float64(s))
	d := time.Duration(ms) * time.Millisecond
	if d < MinPeriod {
		return MinPeriod
	}
	return d
}
