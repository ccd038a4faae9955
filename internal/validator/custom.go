package validator

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	colorRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{6}$`)
)

// httpURLValidator accepts absolute http and https URLs with a host.
func httpURLValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if val == "" || strings.ContainsAny(val, " \t\r\n") {
		return false
	}

	u, err := url.ParseRequestURI(val)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}

	return u.Hostname() != ""
}

// colorValidator accepts colors written as 0xRRGGBB.
func colorValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return colorRegex.MatchString(val)
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
