package api

import (
	"net/http"

	"github.com/shubhanshu-a32/katelog/internal/domain/user"
)

// Trusted gateway headers. Authentication happens upstream; by the time a
// request reaches this service the gateway has already verified the caller
// and stamped these headers.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// identity is the caller as asserted by the gateway.
type identity struct {
	UserID string
	Role   user.Role
}

// callerIdentity extracts the caller from the gateway headers. The bool is
// false when the headers are missing or carry an unknown role, in which case
// a 401 has already been written.
func callerIdentity(w http.ResponseWriter, r *http.Request) (identity, bool) {
	id := r.Header.Get(headerUserID)
	role, err := user.ParseRole(r.Header.Get(headerUserRole))
	if id == "" || err != nil {
		writeError(w, http.StatusUnauthorized, "AuthError", "missing or invalid identity headers")
		return identity{}, false
	}
	return identity{UserID: id, Role: role}, true
}
