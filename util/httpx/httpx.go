// util/httpx/httpx.go
package httpx

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const dateOnly = "2006-01-02"

// PathID reads a positive int64 path parameter.
func PathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseStart accepts RFC3339 or a plain date, which means the start of that
// day in UTC.
func ParseStart(s string) (time.Time, error) {
	return parse(s, 0)
}

// ParseEnd accepts RFC3339 or a plain date, which means the last instant of
// that day in UTC.
func ParseEnd(s string) (time.Time, error) {
	return parse(s, 24*time.Hour-time.Nanosecond)
}

func parse(s string, dayOffset time.Duration) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return d.Add(dayOffset), nil
}

// Flag reads a boolean query parameter; absent means false.
func Flag(c echo.Context, name string) (bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
