package core

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Deposit  TransactionKind = "DEPOSIT"
	Withdraw TransactionKind = "WITHDRAW"
)

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

const (
	ThemeNormal    ThemeMode = "normal"
	ThemeCyberpunk ThemeMode = "cyberpunk"
)

type (
	TransactionKind string

	Frequency string

	ThemeMode string

	// Account holds a running balance maintained only through applied
	// transactions; it is never recomputed from history during normal
	// operation.
	Account struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Balance  decimal.Decimal `json:"balance"`
		ColorTag string          `json:"color"`
	}

	// Transaction is immutable once created. It is only ever removed as
	// part of deleting the account it belongs to.
	Transaction struct {
		ID         string          `json:"id"`
		AccountID  string          `json:"accountId"`
		Kind       TransactionKind `json:"type"`
		Amount     decimal.Decimal `json:"amount"`
		OccurredAt time.Time       `json:"date"`
		Note       string          `json:"note"`
		Automated  bool            `json:"isAuto"`
	}

	// AutomationRule describes a recurring deposit or withdrawal. LastRun
	// is the watermark: the latest calendar date through which the rule
	// has been fully evaluated, whether or not it fired that day.
	AutomationRule struct {
		ID              string          `json:"id"`
		AccountID       string          `json:"accountId"`
		Kind            TransactionKind `json:"type"`
		Amount          decimal.Decimal `json:"amount"`
		Frequency       Frequency       `json:"frequency"`
		ExcludeWeekends bool            `json:"excludeWeekends"`
		Weekdays        WeekdaySet      `json:"weekdaySet,omitempty"`
		LastRun         Date            `json:"lastRunDate"`
		Active          bool            `json:"active"`
		Description     string          `json:"description"`
	}

	// AppState is the full application snapshot: the unit of persistence
	// and the unit the automation engine transforms. It is treated as a
	// value; mutations produce a new snapshot.
	AppState struct {
		Accounts        []Account        `json:"accounts"`
		Transactions    []Transaction    `json:"transactions"`
		AutomationRules []AutomationRule `json:"automationRules"`
		ThemeMode       ThemeMode        `json:"themeMode"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty account name")
	ErrEmptyDescription = errors.New("empty rule description")
	ErrAccountNotFound  = errors.New("account not found")
	ErrRuleNotFound     = errors.New("automation rule not found")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyWeekdaySet  = errors.New("weekly rule needs at least one weekday")
)

// ColorPalette is the fixed rotation of account color tags. It is
// presentation configuration only; new accounts pick the tag at index
// count modulo palette size.
var ColorPalette = []string{
	"bg-blue-500",
	"bg-green-500",
	"bg-purple-500",
	"bg-orange-500",
	"bg-pink-500",
}

// NewID generates an opaque unique identifier. Uniqueness only needs to
// hold within one store's lifetime.
func NewID() string {
	return uuid.NewString()
}

func (k TransactionKind) Valid() bool {
	return k == Deposit || k == Withdraw
}

// Signed returns amount with the sign implied by the kind: positive for
// deposits, negative for withdrawals.
func (k TransactionKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == Withdraw {
		return amount.Neg()
	}
	return amount
}

func (f Frequency) Valid() bool {
	return f == Daily || f == Weekly
}

// WeekdaySet is a set of weekdays (Sunday = 0) encoded as a bitmask. Its
// JSON form is an array of weekday numbers, matching the snapshot format.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Days returns the member weekdays in ascending order.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	days := make([]int, 0, 7)
	for _, d := range s.Days() {
		days = append(days, int(d))
	}
	return json.Marshal(days)
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	var set WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			return errors.New("weekday out of range 0-6")
		}
		set = set.With(time.Weekday(d))
	}
	*s = set
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.AccountID == "" {
		return ErrAccountNotFound
	}
	return nil
}

func (r AutomationRule) Validate() error {
	if r.AccountID == "" {
		return ErrAccountNotFound
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if r.Frequency == Weekly && r.Weekdays.IsEmpty() {
		return ErrEmptyWeekdaySet
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// DefaultState is the well-defined empty snapshot used when nothing has
// been persisted yet or the persisted blob cannot be read.
func DefaultState() AppState {
	return AppState{
		Accounts:        []Account{},
		Transactions:    []Transaction{},
		AutomationRules: []AutomationRule{},
		ThemeMode:       ThemeNormal,
	}
}

// Clone returns a deep copy of the snapshot. Decimal values and dates are
// immutable, so copying the slices is sufficient.
func (s AppState) Clone() AppState {
	out := AppState{
		Accounts:        make([]Account, len(s.Accounts)),
		Transactions:    make([]Transaction, len(s.Transactions)),
		AutomationRules: make([]AutomationRule, len(s.AutomationRules)),
		ThemeMode:       s.ThemeMode,
	}
	copy(out.Accounts, s.Accounts)
	copy(out.Transactions, s.Transactions)
	copy(out.AutomationRules, s.AutomationRules)
	return out
}

// Account returns the account with the given id, if present.
func (s AppState) Account(id string) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Rule returns the automation rule with the given id, if present.
func (s AppState) Rule(id string) (AutomationRule, bool) {
	for _, r := range s.AutomationRules {
		if r.ID == id {
			return r, true
		}
	}
	return AutomationRule{}, false
}

// AccountTransactions returns the account's transactions sorted newest
// first.
func (s AppState) AccountTransactions(accountID string) []Transaction {
	var out []Transaction
	for _, t := range s.Transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sortTransactionsNewestFirst(out)
	return out
}

// RecentTransactions returns up to limit transactions across all accounts,
// newest first.
func (s AppState) RecentTransactions(limit int) []Transaction {
	out := make([]Transaction, len(s.Transactions))
	copy(out, s.Transactions)
	sortTransactionsNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortTransactionsNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].OccurredAt.After(txs[j].OccurredAt)
	})
}

