// Package httpx holds the JSON response helpers shared by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxBodyBytes = 1 << 20

// FieldError is a single validation failure as sent to clients.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"msg": msg})
}

// ServerError is the generic 500 body. Callers log the cause first.
func ServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Server error")
}

// WriteValidation renders err as a 400 with field-level messages. Errors that
// are not ozzo validation errors are reported under an empty param.
func WriteValidation(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusBadRequest, map[string][]FieldError{"errors": FieldErrors(err)})
}

// FieldErrors flattens a validation error, sorted by param for stable output.
func FieldErrors(err error) []FieldError {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []FieldError{{Msg: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for field, ferr := range verrs {
		out = append(out, FieldError{Param: field, Msg: ferr.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Param < out[j].Param })
	return out
}

// DecodeJSON reads a size-limited JSON body into dst. An empty body leaves
// dst untouched so the caller's validation reports the missing fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
