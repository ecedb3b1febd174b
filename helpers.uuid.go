package main

import (
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler generates and checks prefixed request ids.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(prefix string, id string) bool
}

type IDsHandler struct{}

func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random v4 uuid formatted as `prefix:uuid`.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// IsValid reports whether id is a uuid carrying the given prefix.
func (idh *IDsHandler) IsValid(prefix, id string) bool {
	raw, found := strings.CutPrefix(id, prefix+":")
	if !found {
		return false
	}
	return uuid.FromStringOrNil(raw) != uuid.Nil
}

// requestIDFrom returns the X-Request-ID header when it is a valid request
// id, so that client and server logs share the id. Otherwise a new one is
// generated.
func requestIDFrom(r *http.Request, ids UIDHandler) string {
	if id := r.Header.Get("X-Request-ID"); id != "" && ids.IsValid(RequestIDPrefix, id) {
		return id
	}
	return ids.Generate(RequestIDPrefix)
}
