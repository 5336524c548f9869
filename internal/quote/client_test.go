package quote

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varsilias/stockscope/internal/stock"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSnapshot(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"secid":  r.URL.Query().Get("secid"),
			"fltt":   r.URL.Query().Get("fltt"),
			"fields": r.URL.Query().Get("fields"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"f43":1700.0,"f44":1712.0,"f45":-2.5,"f46":1690.0,"f47":31200,"f48":5300000.0,"f58":"Kweichow Moutai","f60":1744.0,"f168":1688.0,"f170":1719.0}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, discard())
	snap, err := c.Snapshot(context.Background(), stock.Parse("sh600519"))
	require.NoError(t, err)

	assert.Equal(t, "1.600519", gotQuery["secid"])
	assert.Equal(t, "2", gotQuery["fltt"])
	assert.NotEmpty(t, gotQuery["fields"])

	assert.Equal(t, "SH600519", snap.Code)
	assert.Equal(t, "Kweichow Moutai", snap.Name)
	assert.Equal(t, "17.00", snap.Price.StringFixed(2))
	assert.Equal(t, "0.12", snap.Change.StringFixed(2))
	assert.Equal(t, "-0.03", snap.ChangePercent.StringFixed(2))
	assert.Equal(t, "16.90", snap.Open.StringFixed(2))
	assert.Equal(t, "17.19", snap.High.StringFixed(2))
	assert.Equal(t, "16.88", snap.Low.StringFixed(2))
	assert.Equal(t, "17.44", snap.PrevClose.StringFixed(2))
	assert.Equal(t, int64(31200), snap.Volume)
}

func TestSnapshotNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, discard()).Snapshot(context.Background(), stock.Parse("600000"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSnapshotFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, discard()).Snapshot(context.Background(), stock.Parse("600000"))
	assert.Error(t, err)
}

func TestPromptContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"f43":1700.0,"f44":1712.0,"f45":-2.5,"f46":1690.0,"f47":31200,"f48":5300000.0,"f58":"Kweichow Moutai","f60":1744.0,"f168":1688.0,"f170":1719.0}}`))
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL, discard()).Snapshot(context.Background(), stock.Parse("sh600519"))
	require.NoError(t, err)

	ctx := snap.PromptContext()
	assert.Contains(t, ctx, "SH600519")
	assert.Contains(t, ctx, "Kweichow Moutai")
	assert.Contains(t, ctx, "17.00")
	assert.Contains(t, ctx, "31200")
}
