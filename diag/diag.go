// Package diag provides the structured-logging and diagnostics side
// channel threaded optionally through bootstrap and pricer calls. Logging
// never changes a computed value — it is strictly observability
// (SPEC_FULL.md Section 3).
package diag

import "go.uber.org/zap"

// Logger wraps a *zap.Logger. The zero value is not usable; use NewNop or
// New.
type Logger struct {
	z *zap.Logger
}

// NewNop returns a Logger that discards everything, the default when a
// caller supplies none.
func NewNop() *Logger { return &Logger{z: zap.NewNop()} }

// New wraps an existing *zap.Logger.
func New(z *zap.Logger) *Logger {
	if z == nil {
		return NewNop()
	}
	return &Logger{z: z}
}

// Event records one diagnostic event: a solver retry, a bracket expansion,
// a fallback from Newton to Brent, a lambda saturation in
// Levenberg-Marquardt.
type Event struct {
	Stage      string
	Message    string
	Iterations int
	Residual   float64
	Fields     map[string]float64
}

// Record logs ev at info level with structured fields, and returns ev
// unchanged so callers can append it to an Analytics.Diagnostics slice in
// the same expression.
func (l *Logger) Record(ev Event) Event {
	if l == nil || l.z == nil {
		return ev
	}
	fields := []zap.Field{
		zap.String("stage", ev.Stage),
		zap.Int("iterations", ev.Iterations),
		zap.Float64("residual", ev.Residual),
	}
	for k, v := range ev.Fields {
		fields = append(fields, zap.Float64(k, v))
	}
	l.z.Info(ev.Message, fields...)
	return ev
}

// Diagnostics accumulates Events across a bootstrap or pricing call, the
// value returned alongside the primary result per SPEC_FULL.md's
// diagnostics-return-value pattern.
type Diagnostics []Event

// Append adds ev and returns the extended slice — a small convenience so
// call sites read `diags = diags.Append(logger.Record(ev))`.
func (d Diagnostics) Append(ev Event) Diagnostics { return append(d, ev) }
