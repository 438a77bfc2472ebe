package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"
)

// DefaultMaxJSONSize bounds JSON request bodies.
const DefaultMaxJSONSize = 1 << 20

// BindJSON binds an application/json body. Unknown fields are ignored; a body
// with trailing data after the object is rejected.
func BindJSON() Bind {
	return func(r *http.Request, v any) error {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, ct)
			}
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}
		if len(body) > DefaultMaxJSONSize {
			return fmt.Errorf("%w: request body too large (max %d bytes)", ErrFailedToParseJSON, DefaultMaxJSONSize)
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}
		var extra json.RawMessage
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}
		return nil
	}
}

// BindQuery binds string fields tagged `query:"name"` from the URL query.
func BindQuery() Bind {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		if err := setTagged(v, "query", q.Get); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToParseQuery, err)
		}
		return nil
	}
}

// BindPath binds string fields tagged `path:"name"` using the router's
// parameter lookup, e.g. chi.URLParam.
func BindPath(param func(r *http.Request, name string) string) Bind {
	return func(r *http.Request, v any) error {
		if err := setTagged(v, "path", func(name string) string { return param(r, name) }); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToParsePath, err)
		}
		return nil
	}
}

func setTagged(v any, tag string, lookup func(string) string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("target must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return ErrBinderNotApplicable
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		name, ok := f.Tag.Lookup(tag)
		if !ok || name == "" || name == "-" || !f.IsExported() {
			continue
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("field %s: only string fields can be bound", f.Name)
		}
		if val := lookup(name); val != "" {
			rv.Field(i).SetString(strings.TrimSpace(val))
		}
	}
	return nil
}
