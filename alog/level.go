package alog

import "strings"

// LogLevel orders entries by importance. Its String form is the Cloud Logging severity.
type LogLevel int

const (
	LevelDebug    LogLevel = -4
	LevelInfo     LogLevel = 0
	LevelNotice   LogLevel = 1
	LevelWarning  LogLevel = 4
	LevelError    LogLevel = 8
	LevelCritical LogLevel = 10
)

var levelNames = map[LogLevel]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelNotice:   "NOTICE",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

// String returns the severity name, for example "WARNING". Levels without a name report "INFO".
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "INFO"
}

// ParseLevel maps a level name such as "debug" or "WARNING" to its LogLevel.
// Unknown names map to LevelInfo.
func ParseLevel(name string) LogLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARN" {
		return LevelWarning
	}
	for l, n := range levelNames {
		if n == name {
			return l
		}
	}
	return LevelInfo
}
