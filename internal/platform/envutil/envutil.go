package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// String returns the trimmed value of name, or def when unset.
// When log is non-nil, falling back to the default is reported at debug level.
func String(name, def string, log *logger.Logger) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		if log != nil {
			log.Debug("env var not set, using default", "name", name)
		}
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Float(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func Bool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Seconds reads an integer number of seconds.
func Seconds(name string, def time.Duration) time.Duration {
	n := Int(name, -1)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// List splits a comma-separated value, dropping empty entries.
func List(name string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
