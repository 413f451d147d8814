// Package automation implements the catch-up scheduler: given the last
// date through which each rule was evaluated and today's date, it replays
// every calendar day in between and materializes the transactions the
// rules would have produced.
//
// Firing decisions use the Strategy Pattern: each frequency has its own
// predicate that classifies a single calendar day.
package automation

import (
	"fmt"

	"github.com/York260/Coins-manager/internal/core"
)

// FiringPredicate decides whether a rule fires on a given calendar day.
type FiringPredicate interface {
	// Fires reports whether the rule produces a transaction on day.
	Fires(rule core.AutomationRule, day core.Date) bool
}

// DailyPredicate fires every day, except weekends when the rule excludes
// them.
type DailyPredicate struct{}

func (DailyPredicate) Fires(rule core.AutomationRule, day core.Date) bool {
	if rule.ExcludeWeekends && day.IsWeekend() {
		return false
	}
	return true
}

// WeeklyPredicate fires only on weekdays that are members of the rule's
// weekday set.
type WeeklyPredicate struct{}

func (WeeklyPredicate) Fires(rule core.AutomationRule, day core.Date) bool {
	return rule.Weekdays.Has(day.Weekday())
}

// neverFires classifies every day as non-firing. It backs rules whose
// frequency is unrecognized, so a malformed rule still has its watermark
// advanced instead of aborting the whole catch-up.
type neverFires struct{}

func (neverFires) Fires(core.AutomationRule, core.Date) bool { return false }

var predicates = map[core.Frequency]FiringPredicate{
	core.Daily:  DailyPredicate{},
	core.Weekly: WeeklyPredicate{},
}

// PredicateFor returns the firing predicate for a frequency. Unknown
// frequencies get a predicate that never fires.
func PredicateFor(frequency core.Frequency) FiringPredicate {
	if p, ok := predicates[frequency]; ok {
		return p
	}
	return neverFires{}
}

// RegisterPredicate installs a predicate for a new frequency type.
func RegisterPredicate(frequency core.Frequency, p FiringPredicate) error {
	if p == nil {
		return fmt.Errorf("nil predicate for frequency %q", frequency)
	}
	predicates[frequency] = p
	return nil
}
