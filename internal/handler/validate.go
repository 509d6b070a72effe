package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldIssue is one itemized validation violation: the JSON path of the
// offending field plus a display message.
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type validate struct {
	v *validator.Validate
}

func newValidate() *validate {
	v := validator.New()
	// Report violations by JSON field name, not Go struct field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &validate{v: v}
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// decodeValid parses the JSON body into dst and validates it against the
// struct's declared schema. On failure it writes the bad_request response
// (with itemized issues when they exist) and returns false; the business
// handler is never invoked with unvalidated input.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.sendError(w, http.StatusBadRequest, "bad_request", "Invalid request data")
		return false
	}

	if err := h.validate.v.Struct(dst); err != nil {
		var issues []FieldIssue
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				issues = append(issues, FieldIssue{
					Path:    fe.Field(),
					Message: issueMessage(fe),
				})
			}
		}
		h.writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "bad_request",
			Message: "Invalid request data",
			Issues:  issues,
		})
		return false
	}

	return true
}
