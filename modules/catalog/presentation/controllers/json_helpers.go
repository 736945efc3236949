package controllers

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/modules/core/domain/aggregates/user"
	"github.com/vicedu/vicedu/pkg/composables"
	"github.com/vicedu/vicedu/pkg/configuration"
	"github.com/vicedu/vicedu/pkg/httpapi"
	"github.com/vicedu/vicedu/pkg/serrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		panic(err)
	}
}

func ensureRequestID(w http.ResponseWriter, r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-ID"
	}
	requestID := strings.TrimSpace(r.Header.Get(header))
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(header, requestID)
	}
	return requestID
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	meta := map[string]string{
		"request_id": ensureRequestID(w, r),
	}
	if err := httpapi.WriteError(w, status, code, message, meta); err != nil {
		panic(err)
	}
}

// writeDomainError maps the workflow error taxonomy onto HTTP statuses.
// Authentication failures never reach here; RequireActor already answered.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, governance.ErrNotFound), errors.Is(err, user.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, governance.ErrUnauthorized), errors.Is(err, governance.ErrFieldForbidden):
		status = http.StatusForbidden
	case errors.Is(err, governance.ErrNoPendingChanges), errors.Is(err, governance.ErrAlreadyDecided):
		status = http.StatusConflict
	case errors.Is(err, governance.ErrInvalidStatus):
		status = http.StatusUnprocessableEntity
	}

	code := "CATALOG_INTERNAL"
	message := "internal error"
	var base *serrors.Base
	if errors.As(err, &base) {
		code = base.Code
		message = base.Message
	}
	writeAPIError(w, r, status, code, message)
}

func useActor(r *http.Request) (governance.Actor, error) {
	u, err := composables.UseUser(r.Context())
	if err != nil {
		return governance.Actor{}, err
	}
	return governance.Actor{
		ID:   u.ID(),
		Role: governance.Role(string(u.Role())),
	}, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "parse %s", name)
	}
	return id, nil
}

func targetTypeFromPath(r *http.Request) (governance.TargetType, bool) {
	switch mux.Vars(r)["target"] {
	case "courses":
		return governance.TargetCourse, true
	case "lessons":
		return governance.TargetLesson, true
	}
	return "", false
}
