package binder

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/moviemate/moviemate/pkg/discover"
)

// TMDB subresources that can be appended to a movie details response.
var Subresources = []string{
	"credits",
	"images",
	"keywords",
	"recommendations",
	"release_dates",
	"reviews",
	"similar",
	"videos",
}

// languageValidator applies discover.IsLanguageCode so every route agrees on
// what a language code is. The empty string is allowed so the field can be
// optional.
func languageValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return discover.IsLanguageCode(value)
}

// subresourcesValidator accepts a comma-separated list of Subresources.
func subresourcesValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, part := range strings.Split(value, ",") {
		if !isSubresource(strings.TrimSpace(part)) {
			return false
		}
	}
	return true
}

func isSubresource(s string) bool {
	for _, r := range Subresources {
		if r == s {
			return true
		}
	}
	return false
}
