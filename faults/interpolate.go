package faults

import "fmt"

// Interpolator is implemented by logger sources that can render message templates.
type Interpolator interface {
	Interpolate(template string, fields map[string]any) string
}

// Interpolate renders a message template with the given fields, delegating to the logger source.
// If the source doesn't implement Interpolator, the template is returned unchanged.
func (d *Dispatcher) Interpolate(template string, fields map[string]any) string {
	i, ok := d.loggers.(Interpolator)
	if !ok {
		return template
	}
	return i.Interpolate(template, fields)
}

// PrettyDumper is implemented by logger sources that can render arbitrary values for log messages.
type PrettyDumper interface {
	PrettyDump(value any, fields map[string]any) string
}

// PrettyDump renders value for a log message, delegating to the logger source.
// If the source doesn't implement PrettyDumper, the value is formatted with the %v verb.
func (d *Dispatcher) PrettyDump(value any, fields map[string]any) string {
	p, ok := d.loggers.(PrettyDumper)
	if !ok {
		return fmt.Sprintf("%v", value)
	}
	return p.PrettyDump(value, fields)
}
