// Package registry maintains named loggers.
//
// Loggers are created lazily the first time they are requested, using a factory.
// A logger can also be replaced at any time with Add; consumers that look up loggers on every use observe the change immediately.
package registry

import (
	"log/slog"
	"slices"

	"github.com/alphadose/haxmap"

	slogkit "github.com/italypaleale/faultkit/slog"
)

// RootLogger is the name of the default logger.
const RootLogger = "root"

// Factory creates the logger with the given name.
type Factory func(name string) slogkit.Logger

// Registry contains named loggers.
// It is safe for concurrent use.
type Registry struct {
	loggers *haxmap.Map[string, slogkit.Logger]
	factory Factory
}

// New returns a new Registry.
// If factory is nil, loggers are created with NewSlogFactory(slog.Default(), nil).
func New(factory Factory) *Registry {
	if factory == nil {
		factory = NewSlogFactory(nil, nil)
	}

	return &Registry{
		loggers: haxmap.New[string, slogkit.Logger](),
		factory: factory,
	}
}

// GetLogger returns the logger with the given name, creating it if needed.
func (r *Registry) GetLogger(name string) slogkit.Logger {
	log, _ := r.loggers.GetOrCompute(name, func() slogkit.Logger {
		return r.factory(name)
	})
	return log
}

// Add sets the logger for the given name, replacing any existing one.
func (r *Registry) Add(log slogkit.Logger, name string) {
	r.loggers.Set(name, log)
}

// Remove deletes the logger with the given name.
// The next call to GetLogger creates it again.
func (r *Registry) Remove(name string) {
	r.loggers.Del(name)
}

// Names returns the names of the loggers that have been created, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.loggers.Len())
	r.loggers.ForEach(func(name string, _ slogkit.Logger) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// NewSlogFactory returns a Factory that creates loggers writing to base, with a "logger" attribute set to the logger's name.
// The levels map optionally contains the minimum level for each logger name.
func NewSlogFactory(base *slog.Logger, levels map[string]slogkit.Level) Factory {
	if base == nil {
		base = slog.Default()
	}

	return func(name string) slogkit.Logger {
		log := slogkit.NewSlogLogger(base.With(slog.String("logger", name)))
		level, ok := levels[name]
		if ok {
			log = log.WithMinLevel(level)
		}
		return log
	}
}
