package binder

import (
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/moviemate/moviemate/pkg/errcodes"
	"github.com/pkg/errors"
)

// Binder is a custom struct that implements the Echo Binder interface. It binds
// path and query params to a struct, uses mold to clean them up, fills in
// defaults, and validates them.
type Binder struct {
	paramDecoder *schema.Decoder
	queryDecoder *schema.Decoder
	conform      *mold.Transformer
	validate     *validator.Validate
}

// New initializes a new Binder instance with the appropriate validation
// functions registered.
func New() (*Binder, error) {
	paramDecoder := schema.NewDecoder()
	paramDecoder.SetAliasTag("param")
	paramDecoder.IgnoreUnknownKeys(true)
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")
	queryDecoder.IgnoreUnknownKeys(true)
	conform := modifiers.New()
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation(language, languageValidator); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := validate.RegisterValidation(subresources, subresourcesValidator); err != nil {
		return nil, errors.WithStack(err)
	}

	return &Binder{paramDecoder, queryDecoder, conform, validate}, nil
}

// Bind binds, modifies, and validates payloads against the given struct.
// Only read requests are supported since the API doesn't accept bodies.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()

	if req.ContentLength > 0 {
		return errcodes.UnsupportedMediaType()
	}
	if req.Method != http.MethodGet && req.Method != http.MethodDelete {
		return errcodes.UnsupportedMediaType()
	}

	if names := c.ParamNames(); len(names) > 0 {
		params := url.Values{}
		for idx, value := range c.ParamValues() {
			if idx < len(names) {
				params.Set(names[idx], value)
			}
		}
		if err := b.decode(i, params, b.paramDecoder); err != nil {
			return err
		}
	}

	if err := b.decode(i, c.QueryParams(), b.queryDecoder); err != nil {
		return err
	}

	if err := b.conform.Struct(req.Context(), i); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) || len(errs) == 0 {
			return errors.WithStack(err)
		}
		msg := formatValidationError(errs[0])
		return errcodes.ValidationError(msg)
	}
	return nil
}

func (b *Binder) decode(i interface{}, params url.Values, decoder *schema.Decoder) error {
	if err := decoder.Decode(i, params); err != nil {
		if errs, ok := err.(schema.MultiError); ok {
			// MultiError is a map, so pick the alphabetically first key to
			// keep the message stable.
			keys := make([]string, 0, len(errs))
			for k := range errs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			err := errs[keys[0]]

			if err, ok := err.(schema.ConversionError); ok {
				msg := formatSchemaConversionError(err)
				return errcodes.ValidationTypeError(msg)
			}
			return errors.WithStack(err)
		}
		return errors.WithStack(err)
	}
	return nil
}
