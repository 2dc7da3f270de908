package rescue

import "fmt"

// Countdown is a number of seconds split into days, hours, minutes and seconds.
type Countdown struct {
	Days    uint64
	Hours   uint64
	Minutes uint64
	Seconds uint64
}

// NewCountdown splits seconds.
func NewCountdown(seconds uint64) Countdown {
	return Countdown{
		Days:    seconds / 86400,
		Hours:   seconds % 86400 / 3600,
		Minutes: seconds % 3600 / 60,
		Seconds: seconds % 60,
	}
}

// String formats as "1d 2h 3m 4s".
func (c Countdown) String() string {
	return fmt.Sprintf("%dd %dh %dm %ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}
