// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/url"
	"strings"

	"github.com/okian/coursecorrect/internal/domain/model"
)

// queryValues collects every non-empty value for key, splitting
// comma-separated lists so ?venue=A,B and ?venue=A&venue=B are equivalent.
func queryValues(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// parseGenders normalizes the gender filter values. An empty filter means
// no restriction and returns nil.
func parseGenders(q url.Values) ([]model.Gender, error) {
	values := queryValues(q, "gender")
	if len(values) == 0 {
		return nil, nil
	}
	genders := make([]model.Gender, 0, len(values))
	for _, v := range values {
		g, err := model.ParseGender(v)
		if err != nil {
			return nil, err
		}
		genders = append(genders, g)
	}
	return genders, nil
}
