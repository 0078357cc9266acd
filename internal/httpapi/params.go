package httpapi

import (
	"net/url"
	"strconv"
	"time"
)

const (
	defaultTimeoutMS = 3000
	minTimeoutMS     = 100
	maxTimeoutMS     = 30000

	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type onlineQuery struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// parseOnlineQuery validates host, port and timeoutMs. It reports every
// failing field at once, keyed by parameter name.
func parseOnlineQuery(q url.Values) (onlineQuery, map[string]string) {
	out := onlineQuery{Timeout: defaultTimeoutMS * time.Millisecond}
	bad := map[string]string{}

	out.Host = q.Get("host")
	if out.Host == "" {
		bad["host"] = "host must be a non-empty string"
	}

	if raw := q.Get("port"); raw == "" {
		bad["port"] = "port is required"
	} else if p, err := strconv.Atoi(raw); err != nil {
		bad["port"] = "port must be an integer"
	} else {
		out.Port = p
	}

	if raw := q.Get("timeoutMs"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < minTimeoutMS || ms > maxTimeoutMS {
			bad["timeoutMs"] = "timeoutMs must be between 100 and 30000"
		} else {
			out.Timeout = time.Duration(ms) * time.Millisecond
		}
	}

	if len(bad) > 0 {
		return out, bad
	}
	return out, nil
}

// parseLimit returns def for an empty value and caps at max.
func parseLimit(raw string, def, max int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	if n > max {
		n = max
	}
	return n, true
}
