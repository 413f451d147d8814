package store

import (
	"encoding/json"
	"fmt"

	"github.com/York260/Coins-manager/internal/core"
	"github.com/shopspring/decimal"
)

// snapshotRule mirrors core.AutomationRule on the wire but keeps the
// migration-sensitive fields optional, so blobs written before rules had a
// frequency still decode.
type snapshotRule struct {
	ID              string               `json:"id"`
	AccountID       string               `json:"accountId"`
	Kind            core.TransactionKind `json:"type"`
	Amount          decimal.Decimal      `json:"amount"`
	Frequency       *core.Frequency      `json:"frequency,omitempty"`
	ExcludeWeekends *bool                `json:"excludeWeekends,omitempty"`
	Weekdays        core.WeekdaySet      `json:"weekdaySet,omitempty"`
	LastRun         core.Date            `json:"lastRunDate"`
	Active          bool                 `json:"active"`
	Description     string               `json:"description"`
}

type snapshot struct {
	Accounts        []core.Account     `json:"accounts"`
	Transactions    []core.Transaction `json:"transactions"`
	AutomationRules []snapshotRule     `json:"automationRules"`
	ThemeMode       core.ThemeMode     `json:"themeMode,omitempty"`
}

// EncodeSnapshot serializes the snapshot to its persisted JSON form.
func EncodeSnapshot(state core.AppState) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return raw, nil
}

// DecodeSnapshot parses a persisted blob and applies schema migration.
//
// Migration is forward-only, non-destructive and idempotent: running it on
// an already-migrated blob changes nothing.
//   - a rule without a frequency becomes a daily rule, keeping its prior
//     excludeWeekends value or defaulting it to true;
//   - a snapshot without a theme mode gets "normal".
func DecodeSnapshot(raw []byte) (core.AppState, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return core.AppState{}, fmt.Errorf("decode snapshot: %w", err)
	}

	state := core.DefaultState()
	if snap.Accounts != nil {
		state.Accounts = snap.Accounts
	}
	if snap.Transactions != nil {
		state.Transactions = snap.Transactions
	}
	if snap.ThemeMode != "" {
		state.ThemeMode = snap.ThemeMode
	}

	state.AutomationRules = make([]core.AutomationRule, 0, len(snap.AutomationRules))
	for _, sr := range snap.AutomationRules {
		state.AutomationRules = append(state.AutomationRules, migrateRule(sr))
	}
	return state, nil
}

func migrateRule(sr snapshotRule) core.AutomationRule {
	rule := core.AutomationRule{
		ID:          sr.ID,
		AccountID:   sr.AccountID,
		Kind:        sr.Kind,
		Amount:      sr.Amount,
		Weekdays:    sr.Weekdays,
		LastRun:     sr.LastRun,
		Active:      sr.Active,
		Description: sr.Description,
	}

	switch {
	case sr.Frequency != nil:
		rule.Frequency = *sr.Frequency
		if sr.ExcludeWeekends != nil {
			rule.ExcludeWeekends = *sr.ExcludeWeekends
		}
	default:
		// Pre-frequency rule: it was always a daily rule.
		rule.Frequency = core.Daily
		rule.ExcludeWeekends = true
		if sr.ExcludeWeekends != nil {
			rule.ExcludeWeekends = *sr.ExcludeWeekends
		}
	}
	return rule
}
