package ui

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/varsilias/stockscope/internal/history"
)

func RegisterRoutes(mux *chi.Mux, u *UI) {
	mux.Get("/", u.Home)
	mux.Get("/history/{id}", u.Analysis)
}

type recordView struct {
	ID        int64
	StockCode string
	StockName string
	At        string
}

// Home lists the saved analyses, newest first.
func (u *UI) Home(w http.ResponseWriter, r *http.Request) {
	recs, err := u.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]recordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, recordView{
			ID:        rec.ID,
			StockCode: rec.StockCode,
			StockName: rec.StockName,
			At:        rec.CreatedAt.Format(time.RFC822),
		})
	}
	u.render(w, "history.html", map[string]any{"Records": views}, http.StatusOK)
}

type analysisView struct {
	recordView
	HTML template.HTML
}

// Analysis shows one saved analysis rendered to HTML.
func (u *UI) Analysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	rec, err := u.store.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	u.render(w, "analysis.html", analysisView{
		recordView: recordView{
			ID:        rec.ID,
			StockCode: rec.StockCode,
			StockName: rec.StockName,
			At:        rec.CreatedAt.Format(time.RFC822),
		},
		HTML: u.mdHTML(rec.Content),
	}, http.StatusOK)
}
