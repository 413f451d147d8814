// Package summary produces a free-text financial overview through the
// Gemini API. Failures never propagate: every error path degrades to a
// fixed user-visible message.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/York260/Coins-manager/internal/core"
	applog "github.com/York260/Coins-manager/internal/log"
	"google.golang.org/genai"
)

// Fallback messages returned instead of errors.
const (
	FallbackNoAPIKey = "Set a Gemini API key to enable AI analysis."
	FallbackEmpty    = "No analysis could be generated."
	FallbackError    = "AI analysis failed, please try again later."
)

// Config holds the analyzer settings.
type Config struct {
	APIKey           string
	Model            string
	TransactionLimit int
}

type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// Analyzer turns the current state into a prompt and asks Gemini for a
// short financial assessment.
type Analyzer struct {
	apiKey   string
	model    string
	limit    int
	logger   *applog.Logger
	generate generateFunc
}

// NewAnalyzer creates an analyzer. No credential is validated here; a
// missing key is handled per call.
func NewAnalyzer(cfg Config, logger *applog.Logger) *Analyzer {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentSummary)
	}
	a := &Analyzer{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		limit:  cfg.TransactionLimit,
		logger: logger,
	}
	a.generate = a.callGemini
	return a
}

// Analyze returns a free-text summary of the given state. Without an API
// key the call is never attempted and the fixed fallback is returned.
func (a *Analyzer) Analyze(ctx context.Context, state core.AppState) string {
	if a.apiKey == "" {
		return FallbackNoAPIKey
	}

	prompt := buildPrompt(state, a.limit)
	text, err := a.generate(ctx, a.model, prompt)
	if err != nil {
		a.logger.ErrorContext(ctx, "Summary generation failed",
			applog.FieldError, err)
		return FallbackError
	}
	if text == "" {
		return FallbackEmpty
	}
	return text
}

func (a *Analyzer) callGemini(ctx context.Context, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: a.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// buildPrompt renders balances, active rules and the most recent
// transactions (newest first) into the advisor prompt.
func buildPrompt(state core.AppState, limit int) string {
	balances := make([]string, 0, len(state.Accounts))
	for _, a := range state.Accounts {
		balances = append(balances, fmt.Sprintf("%s: $%s", a.Name, a.Balance))
	}

	var rules []string
	for _, r := range state.AutomationRules {
		if !r.Active {
			continue
		}
		verb := "deposits"
		if r.Kind == core.Withdraw {
			verb = "withdraws"
		}
		weekends := "included"
		if r.ExcludeWeekends {
			weekends = "excluded"
		}
		rules = append(rules, fmt.Sprintf("%s: %s $%s (weekends %s)", r.Description, verb, r.Amount, weekends))
	}

	recent := state.RecentTransactions(limit)
	txLines := make([]string, 0, len(recent))
	for _, t := range recent {
		sign := "+"
		if t.Kind == core.Withdraw {
			sign = "-"
		}
		txLines = append(txLines, fmt.Sprintf("%s - %s (%s%s)",
			t.OccurredAt.Format("2006-01-02"), t.Note, sign, t.Amount))
	}

	var b strings.Builder
	b.WriteString("You are a professional financial advisor. Based on the user's data below, ")
	b.WriteString("provide a short, insightful analysis with recommendations.\n\n")
	b.WriteString("Current account balances:\n")
	b.WriteString(strings.Join(balances, ", "))
	b.WriteString("\n\nAutomation rules:\n")
	b.WriteString(strings.Join(rules, "\n"))
	b.WriteString(fmt.Sprintf("\n\nMost recent %d transactions:\n", len(txLines)))
	b.WriteString(strings.Join(txLines, "\n"))
	b.WriteString("\n\nComment on cash flow, potential risks, and the automated ")
	b.WriteString("deposit/withdrawal setup. Keep the tone friendly and professional, ")
	b.WriteString("and the answer under 300 words.")
	return b.String()
}
