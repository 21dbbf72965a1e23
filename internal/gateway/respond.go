package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/appsift/appstore-gateway/internal/errors"
	"github.com/appsift/appstore-gateway/internal/httputil"
)

// succeed writes the catalog payload verbatim.
func (h *Handler) succeed(w http.ResponseWriter, operation string, payload json.RawMessage) {
	h.metrics.RecordUpstreamCall(operation, "success")
	httputil.WriteRawJSON(w, http.StatusOK, payload)
}

// failClassified maps a catalog failure through the not-found classifier.
// Only app, developer, privacy and versionHistory take this path; the
// other operations report 500 for every failure (see failInternal).
func (h *Handler) failClassified(w http.ResponseWriter, r *http.Request, operation string, err error) {
	svcErr := errors.FromUpstream(err)

	outcome := "error"
	if svcErr.Code == errors.CodeNotFound {
		outcome = "not_found"
	}
	h.metrics.RecordUpstreamCall(operation, outcome)

	h.log.WithContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
		"operation": operation,
		"status":    svcErr.HTTPStatus,
	}).Warn("catalog call failed")

	httputil.WriteServiceError(w, svcErr)
}

// failInternal reports a catalog failure as 500 regardless of message.
func (h *Handler) failInternal(w http.ResponseWriter, r *http.Request, operation string, err error) {
	h.metrics.RecordUpstreamCall(operation, "error")

	h.log.WithContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
		"operation": operation,
		"status":    http.StatusInternalServerError,
	}).Warn("catalog call failed")

	httputil.InternalError(w, err.Error())
}

// intQuery coerces a numeric query parameter. An absent parameter is
// zero; a non-numeric one is rejected with 400 before any catalog call.
func (h *Handler) intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		httputil.WriteServiceError(w, errors.InvalidInput(name+" must be numeric"))
		return 0, false
	}
	return value, true
}
