package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/splatr/splatr/internal/apperror"
	"github.com/splatr/splatr/internal/model"
	"github.com/splatr/splatr/internal/session"
)

type fakeArtistRepo struct {
	artists map[primitive.ObjectID]*model.Artist
	err     error
}

func (f *fakeArtistRepo) GetArtistByID(_ context.Context, id primitive.ObjectID) (*model.Artist, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.artists[id]
	if !ok {
		return nil, apperror.NotFound("artist", id.Hex())
	}
	return a, nil
}

// writeViews lays down minimal templates exercising the same fields the
// real views use.
func writeViews(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	index := `<h1>{{.Title}}</h1>{{if .User}}<p>hello {{.User.Email}}</p>{{else}}<a href="/login">log in</a>{{end}}<span>{{.Path}}</span>`
	console := `<h1>{{.Title}}</h1><p>{{.User.Email}}</p>{{if .Artist}}<h2>{{.Artist.Name}}</h2>{{else}}<p>no artist</p>{{end}}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "console.html"), []byte(console), 0o644))
	return dir
}

func newPages(t *testing.T, artists *fakeArtistRepo) *PageHandler {
	t.Helper()
	h, err := NewPageHandler(writeViews(t), artists, discardLogger())
	require.NoError(t, err)
	return h
}

func TestNewPageHandlerMissingViews(t *testing.T) {
	_, err := NewPageHandler(t.TempDir(), &fakeArtistRepo{}, discardLogger())
	assert.Error(t, err)
}

func TestHandleIndexAnonymous(t *testing.T) {
	h := newPages(t, &fakeArtistRepo{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.ContextWithPath(req.Context(), "/"))

	rec := httptest.NewRecorder()
	h.HandleIndex(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "log in")
	assert.NotContains(t, rec.Body.String(), "hello")
}

func TestHandleIndexSignedIn(t *testing.T) {
	h := newPages(t, &fakeArtistRepo{})

	user := &model.User{ID: primitive.NewObjectID(), Email: "me@example.com"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.ContextWithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	h.HandleIndex(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello me@example.com")
}

func TestHandleConsoleWithoutUserRedirects(t *testing.T) {
	h := newPages(t, &fakeArtistRepo{})

	rec := httptest.NewRecorder()
	h.HandleConsole(rec, httptest.NewRequest(http.MethodGet, "/console", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?ref=/console", rec.Header().Get("Location"))
}

func TestHandleConsoleWithoutArtist(t *testing.T) {
	h := newPages(t, &fakeArtistRepo{})

	user := &model.User{ID: primitive.NewObjectID(), Email: "plain@example.com"}
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	req = req.WithContext(session.ContextWithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	h.HandleConsole(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no artist")
}

func TestHandleConsoleResolvesArtist(t *testing.T) {
	artistID := primitive.NewObjectID()
	h := newPages(t, &fakeArtistRepo{artists: map[primitive.ObjectID]*model.Artist{
		artistID: {ID: artistID, Name: "The Blobs"},
	}})

	user := &model.User{ID: primitive.NewObjectID(), Email: "a@example.com", Artist: &artistID}
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	req = req.WithContext(session.ContextWithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	h.HandleConsole(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Blobs")
}

func TestHandleConsoleDanglingArtistReference(t *testing.T) {
	// A user pointing at a deleted artist still gets the page, just
	// without the artist section.
	artistID := primitive.NewObjectID()
	h := newPages(t, &fakeArtistRepo{})

	user := &model.User{ID: primitive.NewObjectID(), Email: "a@example.com", Artist: &artistID}
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	req = req.WithContext(session.ContextWithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	h.HandleConsole(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no artist")
}

func TestHandleConsoleArtistLookupFailure(t *testing.T) {
	artistID := primitive.NewObjectID()
	h := newPages(t, &fakeArtistRepo{err: errors.New("connection reset")})

	user := &model.User{ID: primitive.NewObjectID(), Email: "a@example.com", Artist: &artistID}
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	req = req.WithContext(session.ContextWithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	h.HandleConsole(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
