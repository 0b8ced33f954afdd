// Package severity decodes error codes into named severity flags and classifies them into log levels.
//
// Error codes are bitmasks. The flag table is fixed and ordered, which keeps the descriptions deterministic.
package severity

import (
	"strconv"
	"strings"

	slogkit "github.com/italypaleale/faultkit/slog"
)

// Code is an error code, made of one or more severity flags.
type Code uint32

const (
	E_ERROR             Code = 1 << 0
	E_WARNING           Code = 1 << 1
	E_PARSE             Code = 1 << 2
	E_NOTICE            Code = 1 << 3
	E_CORE_ERROR        Code = 1 << 4
	E_CORE_WARNING      Code = 1 << 5
	E_COMPILE_ERROR     Code = 1 << 6
	E_COMPILE_WARNING   Code = 1 << 7
	E_USER_ERROR        Code = 1 << 8
	E_USER_WARNING      Code = 1 << 9
	E_USER_NOTICE       Code = 1 << 10
	E_STRICT            Code = 1 << 11
	E_RECOVERABLE_ERROR Code = 1 << 12
	E_DEPRECATED        Code = 1 << 13
	E_USER_DEPRECATED   Code = 1 << 14
	E_ALL               Code = 32767
)

// Flag is a severity flag with its canonical name.
type Flag struct {
	Value Code
	Name  string
}

// Flags is the ordered table of known flags.
// E_ALL is a composite entry and comes last.
var Flags = []Flag{
	{E_ERROR, "E_ERROR"},
	{E_WARNING, "E_WARNING"},
	{E_PARSE, "E_PARSE"},
	{E_NOTICE, "E_NOTICE"},
	{E_CORE_ERROR, "E_CORE_ERROR"},
	{E_CORE_WARNING, "E_CORE_WARNING"},
	{E_COMPILE_ERROR, "E_COMPILE_ERROR"},
	{E_COMPILE_WARNING, "E_COMPILE_WARNING"},
	{E_USER_ERROR, "E_USER_ERROR"},
	{E_USER_WARNING, "E_USER_WARNING"},
	{E_USER_NOTICE, "E_USER_NOTICE"},
	{E_STRICT, "E_STRICT"},
	{E_RECOVERABLE_ERROR, "E_RECOVERABLE_ERROR"},
	{E_DEPRECATED, "E_DEPRECATED"},
	{E_USER_DEPRECATED, "E_USER_DEPRECATED"},
	{E_ALL, "E_ALL"},
}

// Describe returns the names of the flags contained in code, in table order.
// A flag is reported only when all of its bits are set in code, so the composite E_ALL entry is listed only for codes that include every flag.
func Describe(code Code) []string {
	res := make([]string, 0, 2)
	for _, f := range Flags {
		if f.Value&code == f.Value {
			res = append(res, f.Name)
		}
	}
	return res
}

// Classify returns the log level for an error code.
// Only the exact values listed below have a dedicated level: any other code, including combinations of flags, is critical.
func Classify(code Code) slogkit.Level {
	switch code {
	case E_ERROR, E_USER_ERROR:
		return slogkit.LevelError
	case E_NOTICE, E_USER_NOTICE:
		return slogkit.LevelNotice
	case E_WARNING, E_USER_WARNING:
		return slogkit.LevelWarning
	case E_DEPRECATED:
		return slogkit.LevelInfo
	case E_STRICT:
		return slogkit.LevelAlert
	default:
		return slogkit.LevelCritical
	}
}

// String returns the flag names joined with "|".
// Codes that don't contain any known flag are rendered as their decimal value.
func (c Code) String() string {
	names := Describe(c)
	if len(names) == 0 {
		return strconv.FormatUint(uint64(c), 10)
	}
	return strings.Join(names, "|")
}

// Lookup returns the flag with the given name.
func Lookup(name string) (Code, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, f := range Flags {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}
