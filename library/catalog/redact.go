package catalog

import (
	"net/url"
	"strings"
)

const redactedValue = "[REDACTED]"

// sensitiveParams are query keys whose values never reach the logs.
var sensitiveParams = map[string]struct{}{
	"apikey":       {},
	"api_key":      {},
	"key":          {},
	"token":        {},
	"access_token": {},
}

// RedactURL returns u as a string with credential query values masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	query := u.Query()
	changed := false
	for key, values := range query {
		if _, ok := sensitiveParams[strings.ToLower(key)]; !ok {
			continue
		}
		for i := range values {
			values[i] = redactedValue
		}
		changed = true
	}
	if !changed {
		return u.String()
	}

	clone := *u
	clone.RawQuery = query.Encode()
	return clone.String()
}
