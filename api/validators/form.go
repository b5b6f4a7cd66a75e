package validators

import (
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
)

const maxFormMemory = 1 << 20

// IsFormRequest reports whether the body is an HTML form submission.
func IsFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// ParseFormValues parses urlencoded or multipart bodies into their values.
func ParseFormValues(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return r.PostForm, nil
}

// FormInt reads key as an integer, returning defaultVal when it is absent.
func FormInt(values url.Values, key string, defaultVal int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{key: "must be a whole number"})
	}
	return value, nil
}

// FormBool accepts the values an HTML checkbox or hidden input may carry.
func FormBool(values url.Values, key string) (bool, error) {
	raw := strings.ToLower(strings.TrimSpace(values.Get(key)))
	switch raw {
	case "", "0", "false", "off", "no":
		return false, nil
	case "1", "true", "on", "yes":
		return true, nil
	}
	return false, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{key: "must be true or false"})
}

// ValidateStruct runs the struct's validate tags.
func ValidateStruct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}
