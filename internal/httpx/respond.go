package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps service errors: validation 400, connectivity 503, anything
// else 500 with the raw error text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		writeErrorMessage(w, http.StatusBadRequest, "One or more products not found")
	case errors.Is(err, catalog.ErrInvalidInput):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrUnavailable):
		writeErrorMessage(w, http.StatusServiceUnavailable, unavailableMessage(err))
	default:
		log.WithError(err).WithFields(log.Fields{"method": r.Method, "path": r.URL.Path}).Error("request failed")
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
	}
}

// unavailableMessage returns the text of the innermost error in the chain that
// still reports ErrUnavailable, dropping the operation prefixes.
func unavailableMessage(err error) string {
	msg := err.Error()
	for e := err; e != nil; e = errors.Unwrap(e) {
		if errors.Is(e, catalog.ErrUnavailable) {
			msg = e.Error()
		}
	}
	return msg
}

func parsePage(r *http.Request) (catalog.Page, error) {
	page := catalog.Page{Limit: catalog.DefaultLimit}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("%w: limit must be an integer", catalog.ErrInvalidInput)
		}
		page.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("%w: offset must be an integer", catalog.ErrInvalidInput)
		}
		page.Offset = n
	}
	return page, page.Validate()
}
