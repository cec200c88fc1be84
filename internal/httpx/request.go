package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const MaxBodyBytes = 1 << 20 // 1MB

var (
	ErrUnsupportedMediaType = errors.New("content-type must be application/json")
	ErrBadBody              = errors.New("invalid request body")
)

// BearerToken extracts the token from an Authorization header value. Both
// "Bearer <token>" and any "<scheme> <token>" pair are accepted; the second
// field is the token.
func BearerToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 || fields[1] == "" {
		return "", false
	}
	return fields[1], true
}

// DecodeJSON reads a single JSON value from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return ErrUnsupportedMediaType
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF { // check if there's any trailing data
		return errors.Join(ErrBadBody, errors.New("request body must contain a single JSON value"))
	}
	return nil
}

// WriteDecodeError maps a DecodeJSON failure onto a response.
func WriteDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnsupportedMediaType) {
		WriteError(w, http.StatusUnsupportedMediaType, ErrorResponse{
			Code:    ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return
	}
	WriteError(w, http.StatusBadRequest, ErrorResponse{
		Code:    ErrInvalidJSON,
		Message: "invalid request body",
	})
}
