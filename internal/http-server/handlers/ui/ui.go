package ui

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"auth-api/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

//go:embed templates/*.html
var templatesFS embed.FS

type page struct {
	Title   string
	APIBase string
}

type UI struct {
	log     *slog.Logger
	apiBase string
	tmpl    *template.Template
}

// New parses the embedded pages. apiBase is the path the auth API is mounted on.
func New(log *slog.Logger, apiBase string) (*UI, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &UI{
		log:     log,
		apiBase: apiBase,
		tmpl:    tmpl,
	}, nil
}

func (u *UI) Register() func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/login", http.StatusFound)
		})
		r.Get("/login", u.render("login.html", "Welcome Back"))
		r.Get("/register", u.render("register.html", "Create an Account"))
	}
}

func (u *UI) render(name, title string) http.HandlerFunc {
	const op = "handlers.ui.render"

	log := u.log.With(slog.String("op", op), slog.String("page", name))

	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := u.tmpl.ExecuteTemplate(&buf, name, page{Title: title, APIBase: u.apiBase}); err != nil {
			log.Error("failed to render page", sl.Error(err))
			render.Status(r, http.StatusInternalServerError)
			render.PlainText(w, r, http.StatusText(http.StatusInternalServerError))
			return
		}

		render.HTML(w, r, buf.String())
	}
}
