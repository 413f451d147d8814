package automation

import (
	"fmt"

	"github.com/York260/Coins-manager/internal/core"
	"github.com/shopspring/decimal"
)

// Result summarizes one engine pass.
type Result struct {
	// Changed reports whether the returned state differs from the input.
	// A watermark advance counts as a change even when no transactions
	// were synthesized, so callers persist exactly when Changed is true.
	Changed bool
	// Synthesized is the number of transactions created.
	Synthesized int
	// RulesAdvanced is the number of rules whose watermark moved.
	RulesAdvanced int
}

// Process replays all due automation occurrences up to and including asOf
// and returns the resulting snapshot.
//
// It is pure and idempotent: the input state is never mutated, and a
// second call with the same asOf returns the input unchanged because every
// evaluated rule's watermark already equals asOf. When nothing is due the
// input state is returned as-is with Changed false.
func Process(state core.AppState, asOf core.Date) (core.AppState, Result) {
	var (
		res      Result
		newTxs   []core.Transaction
		newRules = make([]core.AutomationRule, len(state.AutomationRules))
	)
	copy(newRules, state.AutomationRules)

	for i, rule := range newRules {
		// Inactive rules are frozen: their watermark does not advance,
		// so the gap floods when the rule is reactivated later. That
		// replay of the inactive period matches the historical behavior
		// and is intentional.
		if !rule.Active {
			continue
		}
		if rule.LastRun.DaysUntil(asOf) <= 0 {
			// Already caught up, or the clock moved backward. Either
			// way the watermark never moves backward.
			continue
		}

		predicate := PredicateFor(rule.Frequency)
		for day := rule.LastRun.AddDays(1); !day.After(asOf); day = day.AddDays(1) {
			if !predicate.Fires(rule, day) {
				continue
			}
			newTxs = append(newTxs, synthesize(rule, day))
		}

		// The watermark advances even when every candidate day was
		// excluded; those days are considered evaluated and are never
		// revisited.
		newRules[i].LastRun = asOf
		res.RulesAdvanced++
	}

	if res.RulesAdvanced == 0 {
		return state, res
	}

	res.Changed = true
	res.Synthesized = len(newTxs)

	next := core.AppState{
		Accounts:        applyDeltas(state.Accounts, newTxs),
		Transactions:    append(append([]core.Transaction{}, state.Transactions...), newTxs...),
		AutomationRules: newRules,
		ThemeMode:       state.ThemeMode,
	}
	return next, res
}

// synthesize builds the transaction a rule produces on a firing day. The
// canonical timestamp is 09:00:00 local time of that day.
func synthesize(rule core.AutomationRule, day core.Date) core.Transaction {
	return core.Transaction{
		ID:         core.NewID(),
		AccountID:  rule.AccountID,
		Kind:       rule.Kind,
		Amount:     rule.Amount,
		OccurredAt: day.At(9, 0, 0),
		Note:       autoNote(rule),
		Automated:  true,
	}
}

func autoNote(rule core.AutomationRule) string {
	verb := "deposit"
	if rule.Kind == core.Withdraw {
		verb = "withdrawal"
	}
	return fmt.Sprintf("Auto %s: %s", verb, rule.Description)
}

// applyDeltas adds each account's net change over the synthesized
// transactions to its stored balance in a single adjustment per account.
func applyDeltas(accounts []core.Account, txs []core.Transaction) []core.Account {
	deltas := make(map[string]decimal.Decimal, len(accounts))
	for _, t := range txs {
		deltas[t.AccountID] = deltas[t.AccountID].Add(t.Kind.Signed(t.Amount))
	}

	out := make([]core.Account, len(accounts))
	copy(out, accounts)
	for i, acc := range out {
		if delta, ok := deltas[acc.ID]; ok {
			out[i].Balance = acc.Balance.Add(delta)
		}
	}
	return out
}
