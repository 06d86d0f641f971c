package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

func SetLogLevel(level string) {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad error level string")
	}
}

// DefaultYearFrom is the first year the dashboard tracks.
const DefaultYearFrom = 2020

// ParseYearRange parses a "2020-2024" style range into its bounds.
// A single year ("2022") covers just that year. An empty string defaults
// to DefaultYearFrom through the current year.
func ParseYearRange(s string) (int, int, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultYearFrom, time.Now().Year(), nil
	}

	parts := strings.SplitN(s, "-", 2)
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year range %q", s)
	}

	to := from
	if len(parts) == 2 {
		to, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year range %q", s)
		}
	}

	if from < 1948 || to < from {
		// The WTO timeseries has nothing before its GATT-era baseline.
		return 0, 0, fmt.Errorf("invalid year range %q", s)
	}
	return from, to, nil
}
