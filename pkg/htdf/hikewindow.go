package htdf

import "time"

// HikeWindow is the time actually available on the trail between stepping off
// the outbound bus and needing to be back at the stop for the return bus.
type HikeWindow struct {
	Start time.Time `groups:"basic"`
	End   time.Time `groups:"basic"`

	Available time.Duration `groups:"basic"`
	Required  time.Duration `groups:"basic"`

	Feasible bool          `groups:"basic"`
	Margin   time.Duration `groups:"basic"`
}
