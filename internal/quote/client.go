// Package quote fetches live snapshot data for a ticker from the
// eastmoney push feed and formats it for prompt enrichment.
package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/varsilias/stockscope/internal/stock"
)

// ErrNoData means the feed answered but had nothing for the secid.
var ErrNoData = errors.New("no quote data for code")

// The feed returns a flat numeric field map; these are the fields the
// snapshot needs (price, OHLC, previous close, volume, turnover, name).
const quoteFields = "f43,f44,f45,f46,f47,f48,f50,f51,f52,f55,f57,f58,f59,f60,f116,f117,f162,f167,f168,f169,f170,f171,f173,f177"

type Snapshot struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	PrevClose     decimal.Decimal `json:"prev_close"`
	Volume        int64           `json:"volume"`
	Amount        decimal.Decimal `json:"amount"`
}

type Client struct {
	log  *slog.Logger
	http *resty.Client
}

func NewClient(baseURL string, log *slog.Logger) *Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(10 * time.Second)
	return &Client{log: log, http: c}
}

type quoteResponse struct {
	Data *struct {
		F43  float64 `json:"f43"`
		F44  float64 `json:"f44"`
		F45  float64 `json:"f45"`
		F46  float64 `json:"f46"`
		F47  int64   `json:"f47"`
		F48  float64 `json:"f48"`
		F58  string  `json:"f58"`
		F60  float64 `json:"f60"`
		F168 float64 `json:"f168"`
		F170 float64 `json:"f170"`
	} `json:"data"`
}

// Snapshot fetches the current quote for a normalized code.
func (c *Client) Snapshot(ctx context.Context, code stock.Code) (*Snapshot, error) {
	var out quoteResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fltt":   "2",
			"secid":  code.SecID(),
			"fields": quoteFields,
		}).
		SetResult(&out).
		Get("/api/qt/stock/get")
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("quote feed status %d", res.StatusCode())
	}
	d := out.Data
	if d == nil {
		return nil, ErrNoData
	}

	return &Snapshot{
		Code:          code.Display(),
		Name:          d.F58,
		Price:         scaled(d.F43),
		Change:        scaled(d.F44 - d.F43),
		ChangePercent: scaled(d.F45),
		Open:          scaled(d.F46),
		High:          scaled(d.F170),
		Low:           scaled(d.F168),
		PrevClose:     scaled(d.F60),
		Volume:        d.F47,
		Amount:        decimal.NewFromFloat(d.F48),
	}, nil
}

var hundred = decimal.NewFromInt(100)

// The feed reports prices scaled by 100.
func scaled(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Div(hundred)
}

// PromptContext formats the snapshot as the enrichment block appended
// to the analysis system prompt.
func (s *Snapshot) PromptContext() string {
	return fmt.Sprintf(
		"\n\nLive market data for %s (%s):\n"+
			"- Price: %s (%s%%, change %s)\n"+
			"- Open: %s, High: %s, Low: %s, Previous close: %s\n"+
			"- Volume: %d, Turnover: %s\n"+
			"Base all analysis on this real-time data.",
		s.Code, s.Name,
		s.Price.StringFixed(2), s.ChangePercent.StringFixed(2), s.Change.StringFixed(2),
		s.Open.StringFixed(2), s.High.StringFixed(2), s.Low.StringFixed(2), s.PrevClose.StringFixed(2),
		s.Volume, s.Amount.StringFixed(2),
	)
}
