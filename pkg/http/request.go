package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "rentals/pkg/errors"
)

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing data so every operation gets a statically shaped request.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.InvalidInput("Request body too large")
		}
		return apperrors.InvalidInput(fmt.Sprintf("Invalid request body: %s", err.Error()))
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}

// QueryInt parses key as an int, returning fallback when absent.
func QueryInt(q url.Values, key string, fallback int) (int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", key, s))
	}
	return v, nil
}

// QueryIntPtr parses key as an int, returning nil when absent.
func QueryIntPtr(q url.Values, key string) (*int, error) {
	if strings.TrimSpace(q.Get(key)) == "" {
		return nil, nil
	}
	v, err := QueryInt(q, key, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// QueryFloatPtr parses key as a finite float, returning nil when absent.
func QueryFloatPtr(q url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", key, s))
	}
	return &v, nil
}

// QueryList splits a comma separated parameter, also accepting repeated keys.
func QueryList(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ExtractPageLimit reads page and limit without range checks; services
// validate the values so out-of-range input is reported consistently.
func ExtractPageLimit(r *http.Request, defaultLimit int) (int, int, error) {
	q := r.URL.Query()
	page, err := QueryInt(q, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := QueryInt(q, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}
