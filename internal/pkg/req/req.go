/*
Package req provides helper functions for HTTP request parsing and validation.

BindJSON decodes a single JSON document from the request body and Validate checks the
decoded struct against its `validate` tags, reporting the first failing field.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"gopkg.in/go-playground/validator.v9"

	"chatterbox/internal/pkg/errs"
)

// MaxJSONBodySize caps the size of JSON request bodies. Avatar images are sent inline,
// so the limit is generous.
const MaxJSONBodySize int64 = 2 << 20 // 2 MB

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// BindJSON binds the JSON request body to dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodySize))

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// Validate checks s against its struct tags. The error names the first invalid field
// by its JSON name.
func Validate(s any) *errs.CustomError {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errs.NewError(errs.ErrInvalidField, fieldErrs[0].Field())
	}

	return errs.NewError(errs.ErrInvalidParams)
}

// BindAndValidate runs BindJSON followed by Validate.
func BindAndValidate(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if customErr := BindJSON(w, r, dst); customErr != nil {
		return customErr
	}
	return Validate(dst)
}
