package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes the JSON body into dst and runs the
// struct's validate tags. Failures come back as field-level
// validation errors.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("malformed json body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]apperr.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, apperr.FieldError{
					Field:  strings.ToLower(fe.Field()),
					Detail: "failed '" + fe.Tag() + "' check",
				})
			}
			return apperr.Validation("invalid input", fields...)
		}
		return apperr.Validation("invalid input")
	}
	return nil
}

// pageParams reads limit/offset query params with the usual caps.
func pageParams(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		if v > 200 {
			v = 200
		}
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
