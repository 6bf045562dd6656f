package cdconfig

import (
	"fmt"
	"strings"
)

// LogLevel is a collectd log severity. The numeric values match collectd's
// own syslog-style constants so a decoded level can be passed straight back
// to the daemon.
type LogLevel uint32

const (
	LevelError   LogLevel = 3
	LevelWarning LogLevel = 4
	LevelNotice  LogLevel = 5
	LevelInfo    LogLevel = 6
	LevelDebug   LogLevel = 7
)

func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNotice:
		return "notice"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("LogLevel(%d)", uint32(l))
	}
}

// UnmarshalText parses a level name case-insensitively. The short forms
// "err" and "warn" found in collectd configurations are accepted.
func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "err", "error":
		*l = LevelError
	case "warn", "warning":
		*l = LevelWarning
	case "notice":
		*l = LevelNotice
	case "info":
		*l = LevelInfo
	case "debug":
		*l = LevelDebug
	default:
		return fmt.Errorf("unknown log level %q", text)
	}

	return nil
}
