package automation

import (
	"testing"
	"time"

	"github.com/York260/Coins-manager/internal/core"
)

func TestDailyPredicate(t *testing.T) {
	tests := []struct {
		name            string
		day             core.Date
		excludeWeekends bool
		want            bool
	}{
		{"weekday fires", core.NewDate(2024, time.January, 8), false, true},
		{"weekday fires with exclusion", core.NewDate(2024, time.January, 8), true, true},
		{"saturday fires without exclusion", core.NewDate(2024, time.January, 6), false, true},
		{"saturday skipped with exclusion", core.NewDate(2024, time.January, 6), true, false},
		{"sunday skipped with exclusion", core.NewDate(2024, time.January, 7), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := core.AutomationRule{Frequency: core.Daily, ExcludeWeekends: tt.excludeWeekends}
			if got := (DailyPredicate{}).Fires(rule, tt.day); got != tt.want {
				t.Errorf("Fires(%v) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestWeeklyPredicate(t *testing.T) {
	rule := core.AutomationRule{
		Frequency: core.Weekly,
		Weekdays:  core.NewWeekdaySet(time.Monday, time.Wednesday),
	}

	tests := []struct {
		name string
		day  core.Date
		want bool
	}{
		{"monday is a member", core.NewDate(2024, time.January, 8), true},
		{"wednesday is a member", core.NewDate(2024, time.January, 10), true},
		{"tuesday is not", core.NewDate(2024, time.January, 9), false},
		{"sunday is not", core.NewDate(2024, time.January, 7), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (WeeklyPredicate{}).Fires(rule, tt.day); got != tt.want {
				t.Errorf("Fires(%v) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestPredicateFor(t *testing.T) {
	if _, ok := PredicateFor(core.Daily).(DailyPredicate); !ok {
		t.Error("daily frequency should map to DailyPredicate")
	}
	if _, ok := PredicateFor(core.Weekly).(WeeklyPredicate); !ok {
		t.Error("weekly frequency should map to WeeklyPredicate")
	}

	p := PredicateFor(core.Frequency("biweekly"))
	if p.Fires(core.AutomationRule{}, core.NewDate(2024, time.January, 8)) {
		t.Error("unknown frequency must never fire")
	}
}

func TestRegisterPredicate(t *testing.T) {
	freq := core.Frequency("everyday-test")
	if err := RegisterPredicate(freq, DailyPredicate{}); err != nil {
		t.Fatalf("RegisterPredicate() error = %v", err)
	}
	defer delete(predicates, freq)

	if _, ok := PredicateFor(freq).(DailyPredicate); !ok {
		t.Error("registered predicate not returned")
	}

	if err := RegisterPredicate("nil-test", nil); err == nil {
		t.Error("expected error for nil predicate")
	}
}
