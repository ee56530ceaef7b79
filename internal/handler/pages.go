package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/splatr/splatr/internal/apperror"
	"github.com/splatr/splatr/internal/model"
	"github.com/splatr/splatr/internal/repository"
	"github.com/splatr/splatr/internal/session"
)

// PageHandler renders the server-side views. Templates are parsed once at
// startup from the configured views root and reused on every request.
type PageHandler struct {
	index   *template.Template
	console *template.Template
	artists repository.ArtistRepository
	logger  *slog.Logger
}

func NewPageHandler(viewsRoot string, artists repository.ArtistRepository, logger *slog.Logger) (*PageHandler, error) {
	index, err := template.ParseFiles(filepath.Join(viewsRoot, "index.html"))
	if err != nil {
		return nil, err
	}
	console, err := template.ParseFiles(filepath.Join(viewsRoot, "console.html"))
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		index:   index,
		console: console,
		artists: artists,
		logger:  logger,
	}, nil
}

// HandleIndex serves the landing page. The user is optional — anonymous
// visitors see the logged-out variant.
//
// HTTP: GET /
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	h.render(w, h.index, map[string]any{
		"Title": "Splatr",
		"User":  user,
		"Path":  session.PathFromContext(r.Context()),
	})
}

// HandleConsole serves the protected dashboard. The session middleware has
// already gated access, so a resolved user is always present here.
//
// HTTP: GET /console
func (h *PageHandler) HandleConsole(w http.ResponseWriter, r *http.Request) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		// Unreachable behind the middleware, but don't render without a user.
		http.Redirect(w, r, "/login?ref="+r.URL.Path, http.StatusFound)
		return
	}

	var artist *model.Artist
	if user.Artist != nil {
		a, err := h.artists.GetArtistByID(r.Context(), *user.Artist)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			h.logger.Error("console: loading artist",
				slog.String("artistID", user.Artist.Hex()),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		artist = a
	}

	h.render(w, h.console, map[string]any{
		"Title":  "Console",
		"User":   user,
		"Artist": artist,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("template", tmpl.Name()),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
