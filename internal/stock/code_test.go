package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		market  Market
		display string
		secid   string
	}{
		{"sh600519", MarketShanghai, "SH600519", "1.600519"},
		{"SZ000001", MarketShenzhen, "SZ000001", "0.000001"},
		{"hk00700", MarketHongKong, "HK00700", "11.00700"},
		{"bj830799", MarketBeijing, "BJ830799", "0.830799"},
		{"600519", MarketShanghai, "SH600519", "1.600519"},
		{"000001", MarketShenzhen, "SZ000001", "0.000001"},
		{"300750", MarketShenzhen, "SZ300750", "0.300750"},
		{"830799", MarketBeijing, "BJ830799", "0.830799"},
		{"430047", MarketBeijing, "BJ430047", "0.430047"},
		{"510300", MarketShanghai, "SH510300", "1.510300"},
		{"159915", MarketShanghai, "SH159915", "1.159915"},
		// Bare five-digit codes follow the mainland leading-digit rules
		// first; Hong Kong needs the explicit hk prefix or an unclaimed
		// leading digit.
		{"00700", MarketShenzhen, "SZ00700", "0.00700"},
		{"27318", MarketHongKong, "HK27318", "11.27318"},
		{"  SH600519  ", MarketShanghai, "SH600519", "1.600519"},
	}
	for _, tc := range cases {
		c := Parse(tc.in)
		assert.Equal(t, tc.market, c.Market, tc.in)
		assert.Equal(t, tc.display, c.Display(), tc.in)
		assert.Equal(t, tc.secid, c.SecID(), tc.in)
	}
}

func TestMarketName(t *testing.T) {
	assert.Equal(t, "Shanghai", Parse("600519").MarketName())
	assert.Equal(t, "Hong Kong", Parse("hk00700").MarketName())
}
