// Package chat orchestrates analysis and follow-up turns: session
// bookkeeping, prompt enrichment, the relayed stream, and persistence
// of completed analyses.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/varsilias/stockscope/internal/history"
	"github.com/varsilias/stockscope/internal/llm"
	"github.com/varsilias/stockscope/internal/quote"
	"github.com/varsilias/stockscope/internal/relay"
	"github.com/varsilias/stockscope/internal/session"
	"github.com/varsilias/stockscope/internal/stock"
	"github.com/varsilias/stockscope/pkg/types"
)

const systemPrompt = `You are a professional equity analyst with over ten years of experience in the A-share and Hong Kong markets. Your style is professional, objective, and data-driven.

Produce a complete analysis of the requested stock covering:

1. **Fundamentals**: business model, revenue and profit, valuation (P/E, P/B, trailing P/E), profitability; for Hong Kong listings, ADR comparison and currency effects.
2. **Technicals**: recent price action, key support and resistance, moving averages, volume.
3. **Industry**: sector overview, competitive position, cycle.
4. **Risks**: operational, industry, market; for Hong Kong listings, FX and overseas-market linkage.
5. **Recommendation**: overall rating, target price, risk notes.

Use professional financial terminology with concrete figures and reasoning. Format the answer in Markdown.`

// Upstream is what the controller needs from a target endpoint; every
// request carries its own endpoint, model, and credential.
type Upstream struct {
	Endpoint string
	APIKey   string
	Model    string
}

type Controller struct {
	log      *slog.Logger
	relay    *relay.Relay
	sessions *session.Store
	quotes   *quote.Client
	store    *history.Store
}

func NewController(log *slog.Logger, r *relay.Relay, sessions *session.Store, quotes *quote.Client, store *history.Store) *Controller {
	return &Controller{log: log, relay: r, sessions: sessions, quotes: quotes, store: store}
}

// Analyze starts a fresh analysis for a ticker: the session is reset
// and rebound, the system prompt is enriched with a live quote when
// one is available, and the resulting stream is relayed to w. A
// completed analysis is appended to the session and persisted.
func (c *Controller) Analyze(ctx context.Context, w http.ResponseWriter, sessionID string, code stock.Code, up Upstream) {
	sess := c.sessions.Get(sessionID)
	sess.Reset(code.Display())

	prompt := systemPrompt
	var stockName string
	snap, err := c.quotes.Snapshot(ctx, code)
	if err != nil {
		// Analysis degrades to model knowledge only.
		c.log.Warn("quote enrichment unavailable", "code", code.Display(), "err", err)
	} else {
		prompt += snap.PromptContext()
		stockName = snap.Name
	}

	sess.Append(types.RoleSystem, prompt)
	sess.Append(types.RoleUser, fmt.Sprintf(
		"Analyze the stock %s (%s) with a full professional assessment grounded in the live market data.",
		code.Display(), code.MarketName()))

	res := c.relay.Stream(ctx, w, sessionID, up.Endpoint, up.APIKey, llm.Request{
		Model:       up.Model,
		Messages:    llm.NormalizeMessages(sess.Messages()),
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if !res.Completed {
		return
	}

	sess.Append(types.RoleAssistant, res.Text)
	// Persistence must not depend on the (possibly gone) request.
	if _, err := c.store.Append(context.WithoutCancel(ctx), code.Display(), stockName, res.Text); err != nil {
		c.log.Error("persist analysis", "code", code.Display(), "err", err)
	}
}

// Chat relays one follow-up turn over the session's full message log.
// The assistant reply is appended to the session but, unlike a
// completed analysis, not persisted.
func (c *Controller) Chat(ctx context.Context, w http.ResponseWriter, sessionID, message string, up Upstream) {
	sess := c.sessions.Get(sessionID)
	sess.Append(types.RoleUser, message)

	res := c.relay.Stream(ctx, w, sessionID, up.Endpoint, up.APIKey, llm.Request{
		Model:       up.Model,
		Messages:    llm.NormalizeMessages(sess.Messages()),
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if !res.Completed {
		return
	}
	sess.Append(types.RoleAssistant, res.Text)
}
