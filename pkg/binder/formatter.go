package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

const (
	gt           = "gt"
	gte          = "gte"
	language     = "language"
	mx           = "max"
	mn           = "min"
	ne           = "ne"
	oneof        = "oneof"
	required     = "required"
	subresources = "subresources"
)

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case gt:
		return fmt.Sprintf("%q must be greater than %s", field, err.Param())
	case gte:
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	case language:
		return fmt.Sprintf("%q should be a language code like \"en\" or \"en-US\"", field)
	case mx:
		//exhaustive:ignore
		switch err.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return fmt.Sprintf("%q must be less than or equal to %s", field, err.Param())
		case reflect.Slice:
			return fmt.Sprintf("%q length must be less than or equal to %s %s", field, err.Param(), plural("element", err.Param()))
		default:
			return fmt.Sprintf("%q length must be less than or equal to %s %s", field, err.Param(), plural("character", err.Param()))
		}
	case mn:
		//exhaustive:ignore
		switch err.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
		case reflect.Slice:
			return fmt.Sprintf("%q length must be greater than or equal to %s %s", field, err.Param(), plural("element", err.Param()))
		default:
			return fmt.Sprintf("%q length must be greater than or equal to %s %s", field, err.Param(), plural("character", err.Param()))
		}
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case oneof:
		return fmt.Sprintf("%q must be one of the following: %s", field, quoteAll(strings.Fields(err.Param())))
	case required:
		return fmt.Sprintf("%q is required", field)
	case subresources:
		return fmt.Sprintf("%q must be a comma-separated list of: %s", field, quoteAll(Subresources))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func plural(resource, n string) string {
	if n != "1" {
		return resource + "s"
	}
	return resource
}

func quoteAll(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, ", ")
}
