package oracle

import (
	"strconv"
	"strings"
)

// NumericConfig bounds the numeric extraction pipeline. Every extracted
// value is clamped into [Min, Max]; Default is used when the reply carries
// no digits at all.
type NumericConfig struct {
	Default int
	Min     int
	Max     int
}

// ExtractNumber turns a free-form oracle reply into a bounded integer.
// The first maximal run of ASCII digits is parsed; a reply with no digits
// yields the default, a digit run that fails to parse yields the minimum,
// and an empty reply is treated as zero before clamping.
func ExtractNumber(raw string, cfg NumericConfig) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return clampNumber(0, cfg)
	}

	run := firstDigitRun(trimmed)
	if run == "" {
		return clampNumber(cfg.Default, cfg)
	}

	n, err := strconv.Atoi(run)
	if err != nil {
		return clampNumber(cfg.Min, cfg)
	}
	return clampNumber(n, cfg)
}

func firstDigitRun(s string) string {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}

func clampNumber(n int, cfg NumericConfig) int {
	if n < cfg.Min {
		return cfg.Min
	}
	if n > cfg.Max {
		return cfg.Max
	}
	return n
}
