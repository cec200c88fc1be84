package httpx

import (
	"net/http"

	"github.com/go-playground/validator/v10"
)

type ErrorCode string

const (
	ErrInvalidJSON      ErrorCode = "invalid_json"
	ErrUnsupportedMedia ErrorCode = "unsupported_media_type"
	ErrValidationFailed ErrorCode = "validation_failed"
	ErrNotFound         ErrorCode = "not_found"
	ErrInternal         ErrorCode = "internal_error"
)

const (
	MsgUnauthorized = "Unauthorized Access"
	MsgForbidden    = "Forbidden Access"
	MsgNotFound     = "Not Found"
)

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ErrorResponse is the body of every non-2xx response. Auth rejections carry
// only Message.
type ErrorResponse struct {
	Message string       `json:"message"`
	Code    ErrorCode    `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func ValidationDetails(err error) []FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Rule: "invalid", Param: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field: e.Field(),
			Rule:  e.Tag(),
			Param: e.Param(),
		})
	}
	return out
}

func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, ErrorResponse{Message: MsgUnauthorized})
}

func Forbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, ErrorResponse{Message: MsgForbidden})
}

func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, ErrorResponse{Message: MsgNotFound, Code: ErrNotFound})
}

func Internal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, ErrorResponse{Message: "internal server error", Code: ErrInternal})
}
