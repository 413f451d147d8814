// Package services orchestrates the in-memory snapshot: manual mutations,
// automation catch-up and write-through persistence.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/York260/Coins-manager/internal/automation"
	"github.com/York260/Coins-manager/internal/core"
	"github.com/York260/Coins-manager/internal/events"
	applog "github.com/York260/Coins-manager/internal/log"
	"github.com/York260/Coins-manager/internal/store"
	"github.com/shopspring/decimal"
)

// LedgerService owns the current application snapshot. All reads and
// mutations go through it; every successful mutation is written through to
// the store. A failed write is logged and swallowed: the in-memory
// snapshot stays authoritative and the next mutation tries again.
type LedgerService struct {
	mu     sync.Mutex
	state  core.AppState
	store  store.Store
	events *events.Client
	logger *applog.Logger
}

// NewLedgerService loads the persisted snapshot and returns a ready
// service. Load never fails on bad data, only on programmer error.
func NewLedgerService(ctx context.Context, st store.Store, ev *events.Client, logger *applog.Logger) (*LedgerService, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentLedger)
	}

	state, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Loaded application state",
		"accounts", len(state.Accounts),
		"transactions", len(state.Transactions),
		"rules", len(state.AutomationRules))

	return &LedgerService{
		state:  state,
		store:  st,
		events: ev,
		logger: logger,
	}, nil
}

// State returns a copy of the current snapshot.
func (s *LedgerService) State() core.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Accounts returns all accounts.
func (s *LedgerService) Accounts() []core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, len(s.state.Accounts))
	copy(out, s.state.Accounts)
	return out
}

// CreateAccount adds an account with a zero balance and the next color tag
// from the palette.
func (s *LedgerService) CreateAccount(ctx context.Context, name string) (core.Account, error) {
	account := core.Account{
		ID:      core.NewID(),
		Name:    name,
		Balance: decimal.Zero,
	}
	if err := account.Validate(); err != nil {
		return core.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account.ColorTag = core.ColorPalette[len(s.state.Accounts)%len(core.ColorPalette)]

	next := s.state.Clone()
	next.Accounts = append(next.Accounts, account)
	s.state = next
	s.persist(ctx)

	s.logger.InfoContext(ctx, "Account created",
		applog.FieldAccountID, account.ID,
		applog.FieldAccountName, account.Name,
		applog.FieldOperation, applog.OpCreate)
	return account, nil
}

// DeleteAccount removes an account and cascades to its transactions and
// automation rules, so no dangling references remain.
func (s *LedgerService) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Account(id); !ok {
		return core.ErrAccountNotFound
	}

	next := s.state.Clone()

	accounts := next.Accounts[:0]
	for _, a := range next.Accounts {
		if a.ID != id {
			accounts = append(accounts, a)
		}
	}
	next.Accounts = accounts

	txs := make([]core.Transaction, 0, len(next.Transactions))
	for _, t := range next.Transactions {
		if t.AccountID != id {
			txs = append(txs, t)
		}
	}
	next.Transactions = txs

	rules := make([]core.AutomationRule, 0, len(next.AutomationRules))
	for _, r := range next.AutomationRules {
		if r.AccountID != id {
			rules = append(rules, r)
		}
	}
	next.AutomationRules = rules

	s.state = next
	s.persist(ctx)

	s.logger.InfoContext(ctx, "Account deleted with cascades",
		applog.FieldAccountID, id,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// AccountTransactions returns the account's transactions newest first.
func (s *LedgerService) AccountTransactions(id string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Account(id); !ok {
		return nil, core.ErrAccountNotFound
	}
	return s.state.AccountTransactions(id), nil
}

// RecordTransaction applies a manual deposit or withdrawal: the amount is
// validated before any state changes, then exactly one transaction is
// appended and the balance adjusted in the same step.
func (s *LedgerService) RecordTransaction(ctx context.Context, accountID string, kind core.TransactionKind, amount decimal.Decimal, note string) (core.Transaction, error) {
	tx := core.Transaction{
		ID:         core.NewID(),
		AccountID:  accountID,
		Kind:       kind,
		Amount:     amount,
		OccurredAt: time.Now(),
		Note:       note,
		Automated:  false,
	}
	if tx.Note == "" {
		if kind == core.Withdraw {
			tx.Note = "Manual withdrawal"
		} else {
			tx.Note = "Manual deposit"
		}
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	found := false
	for i, a := range next.Accounts {
		if a.ID == accountID {
			next.Accounts[i].Balance = a.Balance.Add(kind.Signed(amount))
			found = true
			break
		}
	}
	if !found {
		return core.Transaction{}, core.ErrAccountNotFound
	}
	next.Transactions = append(next.Transactions, tx)

	s.state = next
	s.persist(ctx)

	s.logger.InfoContext(ctx, "Transaction recorded",
		applog.FieldAccountID, accountID,
		applog.FieldKind, string(kind),
		applog.FieldAmount, amount.String())
	return tx, nil
}

// NewRuleParams carries the user-supplied fields of a new automation rule.
type NewRuleParams struct {
	AccountID       string
	Kind            core.TransactionKind
	Amount          decimal.Decimal
	Frequency       core.Frequency
	ExcludeWeekends bool
	Weekdays        core.WeekdaySet
	Description     string
}

// AddRule creates an automation rule. The watermark starts at today, so
// the engine treats zero days as elapsed until tomorrow.
func (s *LedgerService) AddRule(ctx context.Context, p NewRuleParams) (core.AutomationRule, error) {
	rule := core.AutomationRule{
		ID:              core.NewID(),
		AccountID:       p.AccountID,
		Kind:            p.Kind,
		Amount:          p.Amount,
		Frequency:       p.Frequency,
		ExcludeWeekends: p.ExcludeWeekends,
		Weekdays:        p.Weekdays,
		LastRun:         core.Today(),
		Active:          true,
		Description:     p.Description,
	}
	if err := rule.Validate(); err != nil {
		return core.AutomationRule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Account(p.AccountID); !ok {
		return core.AutomationRule{}, core.ErrAccountNotFound
	}

	next := s.state.Clone()
	next.AutomationRules = append(next.AutomationRules, rule)
	s.state = next
	s.persist(ctx)

	s.logger.InfoContext(ctx, "Automation rule added",
		applog.FieldRuleID, rule.ID,
		applog.FieldRuleDesc, rule.Description,
		applog.FieldKind, string(rule.Kind))
	return rule, nil
}

// Rules returns all automation rules.
func (s *LedgerService) Rules() []core.AutomationRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AutomationRule, len(s.state.AutomationRules))
	copy(out, s.state.AutomationRules)
	return out
}

// ToggleRule flips a rule's active flag. The watermark is untouched: a
// rule deactivated and later reactivated replays the gap on its next
// evaluation.
func (s *LedgerService) ToggleRule(ctx context.Context, id string) (core.AutomationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	for i, r := range next.AutomationRules {
		if r.ID == id {
			next.AutomationRules[i].Active = !r.Active
			s.state = next
			s.persist(ctx)
			s.logger.InfoContext(ctx, "Automation rule toggled",
				applog.FieldRuleID, id,
				"active", next.AutomationRules[i].Active,
				applog.FieldOperation, applog.OpToggle)
			return next.AutomationRules[i], nil
		}
	}
	return core.AutomationRule{}, core.ErrRuleNotFound
}

// Theme returns the persisted theme mode.
func (s *LedgerService) Theme() core.ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ThemeMode
}

// SetTheme stores the theme mode.
func (s *LedgerService) SetTheme(ctx context.Context, mode core.ThemeMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Clone()
	next.ThemeMode = mode
	s.state = next
	s.persist(ctx)
}

// RecentTransactions returns up to limit transactions, newest first.
func (s *LedgerService) RecentTransactions(limit int) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RecentTransactions(limit)
}

// CatchUp runs the automation engine through asOf and persists the result
// when anything changed. With no due rules the pass is free of writes.
func (s *LedgerService) CatchUp(ctx context.Context, asOf core.Date) automation.Result {
	s.mu.Lock()
	next, res := automation.Process(s.state, asOf)
	if res.Changed {
		s.state = next
		s.persist(ctx)
	}
	s.mu.Unlock()

	if !res.Changed {
		s.logger.DebugContext(ctx, "Automation catch-up: nothing due",
			applog.FieldAsOf, asOf.String())
		return res
	}

	s.logger.InfoContext(ctx, "Automation catch-up complete",
		applog.FieldAsOf, asOf.String(),
		applog.FieldSynthesized, res.Synthesized,
		applog.FieldAdvanced, res.RulesAdvanced,
		applog.FieldOperation, applog.OpCatchUp)

	if s.events != nil && res.Synthesized > 0 {
		msg := events.NewCatchUpMessage(asOf.String(), res.RulesAdvanced, res.Synthesized)
		if err := s.events.PublishCatchUp(ctx, msg); err != nil {
			// Fire and forget: the notification channel never blocks
			// or fails the catch-up itself.
			s.logger.WarnContext(ctx, "Failed to publish catch-up notification",
				applog.FieldError, err)
		}
	}
	return res
}

// persist writes the snapshot through to the store. Failures are logged
// and swallowed; the caller's mutation has already been applied in memory.
// Callers must hold s.mu.
func (s *LedgerService) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.state); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist state, continuing in memory",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpSave)
	}
}
