package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// unavailableIndicators are fragments of error text that suggest the
// backend is paused or unreachable rather than rejecting the request.
var unavailableIndicators = []string{
	"fetch failed",
	"failed to fetch",
	"network error",
	"networkerror",
	"503",
	"service unavailable",
	"connect econnrefused",
	"econnrefused",
	"connection refused",
	"timeout",
	"could not connect",
}

// IsUnavailable reports whether err looks like the backend being paused or
// unreachable. Callers show the manual-resume notice instead of a generic
// error when it returns true.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			return true
		}
	}

	return matchesIndicator(err.Error())
}

func matchesIndicator(text string) bool {
	text = strings.ToLower(text)
	for _, indicator := range unavailableIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}
