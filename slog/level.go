package slog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a log entry.
// Values are aligned with slog.Level so that a higher value is always more severe.
type Level int

const (
	LevelDebug     Level = Level(slog.LevelDebug)
	LevelInfo      Level = Level(slog.LevelInfo)
	LevelNotice    Level = 2
	LevelWarning   Level = Level(slog.LevelWarn)
	LevelError     Level = Level(slog.LevelError)
	LevelCritical  Level = 12
	LevelAlert     Level = 16
	LevelEmergency Level = 20
)

// Levels contains all levels, from the least to the most severe.
var Levels = []Level{
	LevelDebug,
	LevelInfo,
	LevelNotice,
	LevelWarning,
	LevelError,
	LevelCritical,
	LevelAlert,
	LevelEmergency,
}

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelNotice:
		return "notice"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	case LevelAlert:
		return "alert"
	case LevelEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Slog returns the slog.Level for this level.
func (l Level) Slog() slog.Level {
	return slog.Level(l)
}

// FromSlog converts a slog.Level to the closest Level that is not more severe.
func FromSlog(level slog.Level) Level {
	res := LevelDebug
	for _, l := range Levels {
		if slog.Level(l) > level {
			break
		}
		res = l
	}
	return res
}

// ParseLevel parses a level name.
// The short aliases "warn", "err", "crit" and "emerg" are accepted too.
// An empty string returns LevelInfo.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "notice":
		return LevelNotice, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "err", "error":
		return LevelError, nil
	case "crit", "critical":
		return LevelCritical, nil
	case "alert":
		return LevelAlert, nil
	case "emerg", "emergency":
		return LevelEmergency, nil
	default:
		return 0, fmt.Errorf("invalid log level '%s'", name)
	}
}

// ReplaceLevelAttr is a function that can be used as ReplaceAttr in slog.HandlerOptions (and in tint.Options).
// It renders the level of each record using the names of this package, so custom levels are shown as "NOTICE" or "CRITICAL" rather than "INFO+2" or "ERROR+4".
func ReplaceLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	return slog.String(slog.LevelKey, strings.ToUpper(FromSlog(level).String()))
}
