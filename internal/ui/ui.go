package ui

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/varsilias/stockscope/internal/history"
)

// UI serves the saved-analysis pages. Stored content is raw Markdown;
// it is rendered to highlighted, sanitized HTML at display time.
type UI struct {
	log   *slog.Logger
	tpl   *template.Template
	store *history.Store
	md    goldmark.Markdown
}

func New(log *slog.Logger, store *history.Store) (*UI, error) {
	t := template.New("root")
	var err error
	if t, err = t.ParseGlob("web/templates/*.html"); err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(false),
				),
			),
		),
	)

	return &UI{log: log, tpl: t, store: store, md: md}, nil
}

func (u *UI) mdHTML(src string) template.HTML {
	var buf bytes.Buffer
	_ = u.md.Convert([]byte(src), &buf)

	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre", "span")
	p.AllowAttrs("style").OnElements("span") // inline styles from the highlighter

	safe := p.SanitizeBytes(buf.Bytes())
	return template.HTML(safe)
}

func (u *UI) render(w http.ResponseWriter, name string, data any, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := u.tpl.ExecuteTemplate(w, name, data); err != nil {
		u.errTpl(w, err)
	}
}

func (u *UI) errTpl(w http.ResponseWriter, err error) {
	u.log.Error("template execute", "err", err)
	_, _ = w.Write([]byte("<pre>template error: " + err.Error() + "</pre>"))
}
