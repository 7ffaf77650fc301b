package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"lab-booking/internal/delivery/http/middleware"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/usecase"
	"lab-booking/pkg/password"
	"lab-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps usecase errors shared by every handler to a response.
// It returns false when err is not one of them.
func writeError(w http.ResponseWriter, err error) bool {
	if ve, ok := usecase.AsValidationError(err); ok {
		response.ValidationError(w, map[string]string{ve.Field: ve.Message})
		return true
	}

	var policyErr *password.PolicyError
	if errors.As(err, &policyErr) {
		response.ValidationError(w, map[string]interface{}{"password": policyErr.Violations})
		return true
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, usecase.ErrAdminOnly):
		response.Forbidden(w, "Admin access required")
	default:
		return false
	}
	return true
}

func actorFrom(r *http.Request) entity.Actor {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

// decodeBody decodes a JSON body. An empty body leaves dst untouched when
// optional is set.
func decodeBody(r *http.Request, dst interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// ifMatchVersion reads the version a client last saw from the If-Match
// header, accepting both quoted and weak entity tags
func ifMatchVersion(r *http.Request) (*int, bool) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" {
		return nil, true
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)

	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		return nil, false
	}
	return &version, true
}

func setETag(w http.ResponseWriter, version int) {
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(version)))
}
