package http

import (
	"net/http"
	"time"

	"github.com/York260/Coins-manager/internal/core"
	"github.com/York260/Coins-manager/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.State())
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Accounts())
}

type createAccountRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.ledger.CreateAccount(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.AccountTransactions(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type createTransactionRequest struct {
	AccountID string `json:"accountId"`
	Kind      string `json:"type"`
	Amount    string `json:"amount"`
	Note      string `json:"note"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind := core.TransactionKind(req.Kind)
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, core.ErrInvalidKind.Error())
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.ledger.RecordTransaction(r.Context(), req.AccountID, kind, amount, sanitizeInput(req.Note))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Rules())
}

type createRuleRequest struct {
	AccountID       string          `json:"accountId"`
	Kind            string          `json:"type"`
	Amount          string          `json:"amount"`
	Frequency       string          `json:"frequency"`
	ExcludeWeekends bool            `json:"excludeWeekends"`
	Weekdays        core.WeekdaySet `json:"weekdaySet"`
	Description     string          `json:"description"`
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind := core.TransactionKind(req.Kind)
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, core.ErrInvalidKind.Error())
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := s.ledger.AddRule(r.Context(), services.NewRuleParams{
		AccountID:       req.AccountID,
		Kind:            kind,
		Amount:          amount,
		Frequency:       core.Frequency(req.Frequency),
		ExcludeWeekends: req.ExcludeWeekends,
		Weekdays:        req.Weekdays,
		Description:     sanitizeInput(req.Description),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleToggleRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.ledger.ToggleRule(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"themeMode": string(s.ledger.Theme())})
}

type themeRequest struct {
	Mode string `json:"themeMode"`
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := core.ThemeMode(req.Mode)
	if mode != core.ThemeNormal && mode != core.ThemeCyberpunk {
		writeError(w, http.StatusBadRequest, "unknown theme mode")
		return
	}
	s.ledger.SetTheme(r.Context(), mode)
	writeJSON(w, http.StatusOK, map[string]string{"themeMode": string(mode)})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	text := s.analyzer.Analyze(r.Context(), s.ledger.State())
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

func (s *Server) handleCatchUp(w http.ResponseWriter, r *http.Request) {
	res := s.ledger.CatchUp(r.Context(), core.Today())
	writeJSON(w, http.StatusOK, map[string]any{
		"changed":             res.Changed,
		"transactionsCreated": res.Synthesized,
		"rulesAdvanced":       res.RulesAdvanced,
	})
}
