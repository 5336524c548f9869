// Package stock normalizes user-entered stock codes into market,
// display, and quote-feed identifiers.
package stock

import "strings"

type Market string

const (
	MarketShanghai Market = "sh"
	MarketShenzhen Market = "sz"
	MarketHongKong Market = "hk"
	MarketBeijing  Market = "bj"
)

var marketNames = map[Market]string{
	MarketShanghai: "Shanghai",
	MarketShenzhen: "Shenzhen",
	MarketHongKong: "Hong Kong",
	MarketBeijing:  "Beijing",
}

// Code is a normalized stock code.
type Code struct {
	Number string // digits only, e.g. "600519"
	Market Market
}

// Parse accepts the forms users actually type: an explicit exchange
// prefix (sh/sz/hk/bj, any case) or bare digits classified by the
// leading-digit conventions of the mainland exchanges. Mainland digit
// rules win over length, so a five-digit code reads as Hong Kong only
// when no mainland convention claims its leading digit.
func Parse(raw string) Code {
	s := strings.ToLower(strings.TrimSpace(raw))

	var market Market
	switch {
	case strings.HasPrefix(s, "sh"):
		market = MarketShanghai
	case strings.HasPrefix(s, "sz"):
		market = MarketShenzhen
	case strings.HasPrefix(s, "hk"):
		market = MarketHongKong
	case strings.HasPrefix(s, "bj"):
		market = MarketBeijing
	}

	num := digits(s)
	if market == "" {
		switch {
		case strings.HasPrefix(num, "6"), strings.HasPrefix(num, "5"), strings.HasPrefix(num, "1"):
			market = MarketShanghai
		case strings.HasPrefix(num, "0"), strings.HasPrefix(num, "3"):
			market = MarketShenzhen
		case strings.HasPrefix(num, "8"), strings.HasPrefix(num, "4"):
			market = MarketBeijing
		case len(num) == 5:
			market = MarketHongKong
		default:
			market = MarketShenzhen
		}
	}
	return Code{Number: num, Market: market}
}

// Display is the user-facing form, e.g. "SH600519".
func (c Code) Display() string {
	return strings.ToUpper(string(c.Market)) + c.Number
}

// MarketName is the human-readable exchange name.
func (c Code) MarketName() string {
	return marketNames[c.Market]
}

// SecID is the quote-feed identifier: exchange-number "." code, where
// Shanghai is 1, Shenzhen and Beijing 0, and Hong Kong 11.
func (c Code) SecID() string {
	switch c.Market {
	case MarketShanghai:
		return "1." + c.Number
	case MarketHongKong:
		return "11." + c.Number
	default:
		return "0." + c.Number
	}
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
