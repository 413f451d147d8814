package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/York260/Coins-manager/internal/core"
	applog "github.com/York260/Coins-manager/internal/log"
	"github.com/York260/Coins-manager/internal/store"
	"github.com/shopspring/decimal"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{
		Handler:   slog.NewTextHandler(io.Discard, nil),
		Component: applog.ComponentLedger,
	})
}

func newTestService(t *testing.T) (*LedgerService, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	svc, err := NewLedgerService(context.Background(), mem, nil, quietLogger())
	if err != nil {
		t.Fatalf("NewLedgerService: %v", err)
	}
	return svc, mem
}

func TestCreateAccountRotatesPalette(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	for i := 0; i < len(core.ColorPalette)+1; i++ {
		a, err := svc.CreateAccount(ctx, "Account")
		if err != nil {
			t.Fatalf("CreateAccount #%d: %v", i, err)
		}
		want := core.ColorPalette[i%len(core.ColorPalette)]
		if a.ColorTag != want {
			t.Errorf("account #%d color = %q, want %q", i, a.ColorTag, want)
		}
		if !a.Balance.IsZero() {
			t.Errorf("account #%d balance = %s, want 0", i, a.Balance)
		}
	}
	if mem.Saves() != len(core.ColorPalette)+1 {
		t.Errorf("saves = %d, want one per mutation", mem.Saves())
	}
}

func TestCreateAccountRejectsEmptyName(t *testing.T) {
	svc, mem := newTestService(t)

	if _, err := svc.CreateAccount(context.Background(), ""); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
	if mem.Saves() != 0 {
		t.Errorf("rejected mutation wrote state anyway")
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	keep, _ := svc.CreateAccount(ctx, "Keep")
	doomed, _ := svc.CreateAccount(ctx, "Doomed")

	amount := decimal.NewFromInt(5)
	if _, err := svc.RecordTransaction(ctx, doomed.ID, core.Deposit, amount, ""); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	if _, err := svc.RecordTransaction(ctx, keep.ID, core.Deposit, amount, ""); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	if _, err := svc.AddRule(ctx, NewRuleParams{
		AccountID:   doomed.ID,
		Kind:        core.Deposit,
		Amount:      amount,
		Frequency:   core.Daily,
		Description: "doomed rule",
	}); err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	if err := svc.DeleteAccount(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	state := svc.State()
	if len(state.Accounts) != 1 || state.Accounts[0].ID != keep.ID {
		t.Fatalf("accounts after delete = %+v", state.Accounts)
	}
	for _, tx := range state.Transactions {
		if tx.AccountID == doomed.ID {
			t.Errorf("dangling transaction %s for deleted account", tx.ID)
		}
	}
	if len(state.Transactions) != 1 {
		t.Errorf("transactions = %d, want 1", len(state.Transactions))
	}
	if len(state.AutomationRules) != 0 {
		t.Errorf("rules = %d, want 0", len(state.AutomationRules))
	}
}

func TestDeleteAccountUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.DeleteAccount(context.Background(), "missing"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestRecordTransactionAdjustsBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acc, _ := svc.CreateAccount(ctx, "Main")

	tests := []struct {
		name        string
		kind        core.TransactionKind
		amount      decimal.Decimal
		wantBalance string
		wantNote    string
	}{
		{"deposit", core.Deposit, decimal.NewFromFloat(100.5), "100.5", "Manual deposit"},
		{"withdraw", core.Withdraw, decimal.NewFromFloat(30.25), "70.25", "Manual withdrawal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := svc.RecordTransaction(ctx, acc.ID, tt.kind, tt.amount, "")
			if err != nil {
				t.Fatalf("RecordTransaction: %v", err)
			}
			if tx.Note != tt.wantNote {
				t.Errorf("note = %q, want %q", tx.Note, tt.wantNote)
			}
			if tx.Automated {
				t.Error("manual transaction flagged as automated")
			}
			got := svc.State()
			a, _ := got.Account(acc.ID)
			if a.Balance.String() != tt.wantBalance {
				t.Errorf("balance = %s, want %s", a.Balance, tt.wantBalance)
			}
		})
	}
}

func TestRecordTransactionValidatesBeforeMutating(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	acc, _ := svc.CreateAccount(ctx, "Main")
	saves := mem.Saves()

	tests := []struct {
		name      string
		accountID string
		amount    decimal.Decimal
		wantErr   error
	}{
		{"zero amount", acc.ID, decimal.Zero, core.ErrInvalidAmount},
		{"negative amount", acc.ID, decimal.NewFromInt(-10), core.ErrInvalidAmount},
		{"unknown account", "nope", decimal.NewFromInt(10), core.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordTransaction(ctx, tt.accountID, core.Deposit, tt.amount, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	state := svc.State()
	if len(state.Transactions) != 0 {
		t.Errorf("rejected inputs left %d transactions", len(state.Transactions))
	}
	a, _ := state.Account(acc.ID)
	if !a.Balance.IsZero() {
		t.Errorf("rejected inputs moved balance to %s", a.Balance)
	}
	if mem.Saves() != saves {
		t.Errorf("rejected inputs wrote state")
	}
}

func TestAddRuleStartsWatermarkToday(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acc, _ := svc.CreateAccount(ctx, "Main")

	rule, err := svc.AddRule(ctx, NewRuleParams{
		AccountID:       acc.ID,
		Kind:            core.Deposit,
		Amount:          decimal.NewFromInt(10),
		Frequency:       core.Daily,
		ExcludeWeekends: true,
		Description:     "Lunch money",
	})
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if !rule.LastRun.Equal(core.Today()) {
		t.Errorf("watermark = %s, want today", rule.LastRun)
	}
	if !rule.Active {
		t.Error("new rule not active")
	}

	// A fresh rule has nothing to replay.
	res := svc.CatchUp(ctx, core.Today())
	if res.Synthesized != 0 {
		t.Errorf("fresh rule synthesized %d transactions", res.Synthesized)
	}
}

func TestAddRuleValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acc, _ := svc.CreateAccount(ctx, "Main")

	tests := []struct {
		name    string
		params  NewRuleParams
		wantErr error
	}{
		{
			"unknown account",
			NewRuleParams{AccountID: "nope", Kind: core.Deposit, Amount: decimal.NewFromInt(1), Frequency: core.Daily, Description: "x"},
			core.ErrAccountNotFound,
		},
		{
			"empty description",
			NewRuleParams{AccountID: acc.ID, Kind: core.Deposit, Amount: decimal.NewFromInt(1), Frequency: core.Daily},
			core.ErrEmptyDescription,
		},
		{
			"weekly without weekdays",
			NewRuleParams{AccountID: acc.ID, Kind: core.Deposit, Amount: decimal.NewFromInt(1), Frequency: core.Weekly, Description: "x"},
			core.ErrEmptyWeekdaySet,
		},
		{
			"bad amount",
			NewRuleParams{AccountID: acc.ID, Kind: core.Deposit, Amount: decimal.Zero, Frequency: core.Daily, Description: "x"},
			core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddRule(ctx, tt.params); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestToggleRule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acc, _ := svc.CreateAccount(ctx, "Main")
	rule, _ := svc.AddRule(ctx, NewRuleParams{
		AccountID: acc.ID, Kind: core.Deposit,
		Amount: decimal.NewFromInt(1), Frequency: core.Daily, Description: "x",
	})

	toggled, err := svc.ToggleRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("ToggleRule: %v", err)
	}
	if toggled.Active {
		t.Error("rule still active after toggle")
	}
	if !toggled.LastRun.Equal(rule.LastRun) {
		t.Errorf("toggle moved watermark from %s to %s", rule.LastRun, toggled.LastRun)
	}

	back, _ := svc.ToggleRule(ctx, rule.ID)
	if !back.Active {
		t.Error("rule not active after second toggle")
	}

	if _, err := svc.ToggleRule(ctx, "missing"); !errors.Is(err, core.ErrRuleNotFound) {
		t.Fatalf("err = %v, want ErrRuleNotFound", err)
	}
}

func TestCatchUpPersistsOnlyOnChange(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	acc, _ := svc.CreateAccount(ctx, "Main")
	if _, err := svc.AddRule(ctx, NewRuleParams{
		AccountID: acc.ID, Kind: core.Deposit,
		Amount: decimal.NewFromInt(10), Frequency: core.Daily, Description: "Daily",
	}); err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	saves := mem.Saves()
	future := core.Today().AddDays(3)

	res := svc.CatchUp(ctx, future)
	if res.Synthesized != 3 {
		t.Fatalf("synthesized = %d, want 3", res.Synthesized)
	}
	if mem.Saves() != saves+1 {
		t.Errorf("saves = %d, want %d", mem.Saves(), saves+1)
	}

	// Second pass at the same date is caught up, so no write.
	res = svc.CatchUp(ctx, future)
	if res.Changed {
		t.Error("second catch-up reported changes")
	}
	if mem.Saves() != saves+1 {
		t.Errorf("no-op catch-up wrote state")
	}

	a, _ := svc.State().Account(acc.ID)
	if a.Balance.String() != "30" {
		t.Errorf("balance = %s, want 30", a.Balance)
	}
}

func TestStateSurvivesReload(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	svc, err := NewLedgerService(ctx, mem, nil, quietLogger())
	if err != nil {
		t.Fatalf("NewLedgerService: %v", err)
	}
	acc, _ := svc.CreateAccount(ctx, "Persisted")
	svc.SetTheme(ctx, core.ThemeCyberpunk)

	reloaded, err := NewLedgerService(ctx, mem, nil, quietLogger())
	if err != nil {
		t.Fatalf("NewLedgerService (reload): %v", err)
	}
	state := reloaded.State()
	if len(state.Accounts) != 1 || state.Accounts[0].ID != acc.ID {
		t.Fatalf("reloaded accounts = %+v", state.Accounts)
	}
	if state.ThemeMode != core.ThemeCyberpunk {
		t.Errorf("theme = %q, want cyberpunk", state.ThemeMode)
	}
}

type failingStore struct {
	state core.AppState
}

func (f *failingStore) Load(context.Context) (core.AppState, error) { return f.state.Clone(), nil }
func (f *failingStore) Save(context.Context, core.AppState) error {
	return errors.New("disk on fire")
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	svc, err := NewLedgerService(ctx, &failingStore{state: core.DefaultState()}, nil, quietLogger())
	if err != nil {
		t.Fatalf("NewLedgerService: %v", err)
	}

	acc, err := svc.CreateAccount(ctx, "Still here")
	if err != nil {
		t.Fatalf("CreateAccount with failing store: %v", err)
	}
	if _, ok := svc.State().Account(acc.ID); !ok {
		t.Fatal("mutation lost after save failure")
	}
}

func TestRecentTransactionsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	acc, _ := svc.CreateAccount(ctx, "Main")

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordTransaction(ctx, acc.ID, core.Deposit, decimal.NewFromInt(int64(i+1)), ""); err != nil {
			t.Fatalf("RecordTransaction: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	recent := svc.RecentTransactions(2)
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if !recent[0].OccurredAt.After(recent[1].OccurredAt) {
		t.Error("transactions not newest first")
	}
}
