package htdf

import "time"

type DeadlineRule string

const (
	DeadlineRuleWeekday           DeadlineRule = "weekday"
	DeadlineRuleFridayMargin      DeadlineRule = "friday-safety-margin"
	DeadlineRuleSaturdayException DeadlineRule = "saturday-exception-service"
	DeadlineRuleNoService         DeadlineRule = "no-service"
)

// Deadline is the latest acceptable arrival back at the origin for a given
// date and region. A no-service deadline has a zero Time and means every
// candidate for the region is infeasible, not that the query failed.
type Deadline struct {
	Time time.Time `groups:"basic"`

	Rule   DeadlineRule `groups:"basic"`
	Region string       `groups:"basic"`

	// Estimated is set when the deadline was derived from a fallback
	// candle-lighting estimate rather than a published time.
	Estimated bool `groups:"basic"`
}

func (d *Deadline) NoService() bool {
	return d.Rule == DeadlineRuleNoService
}
