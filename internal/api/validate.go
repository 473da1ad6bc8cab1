package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/stagehouse/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("projectstatus", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || model.ValidProjectStatus(s)
	}); err != nil {
		panic(fmt.Sprintf("registering projectstatus validation: %v", err))
	}

	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "projectstatus":
		return "must be one of: draft, active, completed, cancelled"
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// decodeAndValidate decodes the request body into target and validates it. On
// failure it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	err := validate.Struct(target)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return false
	}

	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := strings.TrimPrefix(fe.Namespace(), reflect.TypeOf(target).Elem().Name()+".")
		fields[name] = fieldMessage(fe)
		names = append(names, name)
	}
	sort.Strings(names)

	jsonResponse(w, http.StatusBadRequest, map[string]any{
		"error":  "invalid fields: " + strings.Join(names, ", "),
		"fields": fields,
	})
	return false
}
