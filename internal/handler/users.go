package handler

import (
	"log/slog"
	"net/http"

	"github.com/splatr/splatr/internal/middleware"
	"github.com/splatr/splatr/internal/repository"
)

// UsersHandler serves the internal users API.
type UsersHandler struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUsersHandler(users repository.UserRepository, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{users: users, logger: logger}
}

// HandleList returns every user matching the externalId filter, wrapped in
// the metadata envelope. externalId is unique, so data holds 0 or 1
// elements — callers must not assume exactly 1.
//
// HTTP: GET /api/users?externalId=<id>
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	externalID := r.URL.Query().Get("externalId")

	found, err := h.users.FindUsersByExternalID(r.Context(), externalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, DataResponse{
		Metadata: middleware.MetadataFromContext(r.Context()),
		Data:     found,
	})
}

// HandleCreate is declared but intentionally not implemented: the intended
// contract is unspecified, so it answers exactly like an unmatched route
// and has no side effects.
//
// HTTP: POST /api/users
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	NotFound(w, r)
}
