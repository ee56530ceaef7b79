package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/splatr/splatr/internal/middleware"
	"github.com/splatr/splatr/internal/model"
)

type fakeUserRepo struct {
	users []model.User
	err   error
}

func (f *fakeUserRepo) CreateUser(context.Context, *model.User) error {
	return errors.New("not used")
}

func (f *fakeUserRepo) GetUserByID(context.Context, string) (*model.User, error) {
	return nil, errors.New("not used")
}

func (f *fakeUserRepo) FindUsersByExternalID(_ context.Context, externalID string) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	found := make([]model.User, 0, 1)
	for _, u := range f.users {
		if u.ExternalID == externalID {
			found = append(found, u)
		}
	}
	return found, nil
}

type usersListBody struct {
	Metadata middleware.Metadata `json:"_metadata"`
	Data     []model.User        `json:"data"`
}

// listUsers runs HandleList behind the metadata middleware, the way the
// router mounts it.
func listUsers(t *testing.T, repo *fakeUserRepo, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewUsersHandler(repo, discardLogger())
	rec := httptest.NewRecorder()
	middleware.ResponseMetadata(http.HandlerFunc(h.HandleList)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleListReturnsMatchingUser(t *testing.T) {
	user := model.User{
		ID:         primitive.NewObjectID(),
		ExternalID: "auth0|abc",
		Email:      "artist@example.com",
	}
	repo := &fakeUserRepo{users: []model.User{user}}

	rec := listUsers(t, repo, "/api/users?externalId=auth0|abc")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body usersListBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, user.ID, body.Data[0].ID)
	assert.Equal(t, "artist@example.com", body.Data[0].Email)
	assert.NotEqual(t, uuid.Nil, body.Metadata.RequestID)
	assert.False(t, body.Metadata.RequestTime.IsZero())
}

func TestHandleListNoMatchIsEmptyList(t *testing.T) {
	repo := &fakeUserRepo{users: []model.User{{ExternalID: "auth0|other"}}}

	rec := listUsers(t, repo, "/api/users?externalId=auth0|missing")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body usersListBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
}

func TestHandleListWithoutFilterDoesNotDumpUsers(t *testing.T) {
	// Omitting externalId queries for the empty string, which never
	// matches a record. The endpoint must not fall back to listing the
	// whole collection.
	repo := &fakeUserRepo{users: []model.User{
		{ID: primitive.NewObjectID(), ExternalID: "auth0|a", Email: "a@example.com"},
		{ID: primitive.NewObjectID(), ExternalID: "auth0|b", Email: "b@example.com"},
	}}

	rec := listUsers(t, repo, "/api/users")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body usersListBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data)
}

func TestHandleListRepositoryFailure(t *testing.T) {
	repo := &fakeUserRepo{err: errors.New("connection reset")}

	rec := listUsers(t, repo, "/api/users?externalId=x")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body.Error)
	assert.NotContains(t, body.Message, "connection reset", "internal error text must not leak")
}

func TestHandleCreateAnswersLikeUnmatchedRoute(t *testing.T) {
	h := NewUsersHandler(&fakeUserRepo{}, discardLogger())

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/users", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 NOT FOUND", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}
