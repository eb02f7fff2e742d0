package log

import "sync"

// record captures one deferred log call so it can be replayed against the
// underlying Logger in order once Flush is called.
type record struct {
	args     []any
	format   string
	level    Level
	isFormat bool
}

// Buffered is a Logger that queues every call instead of writing it, and
// only emits the queue, in order, against a destination Logger when Flush
// is called. Nothing outside this package constructs one: the parallel
// scheduler does not buffer per-project output, so jobs running
// concurrently write straight to their projects' loggers and their lines
// can interleave.
type Buffered struct {
	mu      sync.Mutex
	records []record
	fields  map[string]any
}

// NewBuffered returns a Logger that queues writes until Flush(dest) is called.
func NewBuffered() *Buffered {
	return &Buffered{fields: map[string]any{}}
}

func (b *Buffered) push(level Level, format string, isFormat bool, args []any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, record{level: level, format: format, isFormat: isFormat, args: args})
}

func (b *Buffered) Trace(args ...any)                { b.push(TraceLevel, "", false, args) }
func (b *Buffered) Tracef(f string, args ...any)     { b.push(TraceLevel, f, true, args) }
func (b *Buffered) Debug(args ...any)                { b.push(DebugLevel, "", false, args) }
func (b *Buffered) Debugf(f string, args ...any)     { b.push(DebugLevel, f, true, args) }
func (b *Buffered) Info(args ...any)                 { b.push(InfoLevel, "", false, args) }
func (b *Buffered) Infof(f string, args ...any)      { b.push(InfoLevel, f, true, args) }
func (b *Buffered) Warn(args ...any)                 { b.push(WarnLevel, "", false, args) }
func (b *Buffered) Warnf(f string, args ...any)      { b.push(WarnLevel, f, true, args) }
func (b *Buffered) Error(args ...any)                { b.push(ErrorLevel, "", false, args) }
func (b *Buffered) Errorf(f string, args ...any)     { b.push(ErrorLevel, f, true, args) }

func (b *Buffered) WithField(key string, value any) Logger {
	b.mu.Lock()
	defer b.mu.Unlock()

	clone := &Buffered{fields: make(map[string]any, len(b.fields)+1)}
	for k, v := range b.fields {
		clone.fields[k] = v
	}

	clone.fields[key] = value

	return clone
}

func (b *Buffered) SetLevel(Level) {}
func (b *Buffered) Level() Level   { return TraceLevel }

// Flush replays every queued record, in order, against dest, then clears the
// buffer. Safe to call once per job completion.
func (b *Buffered) Flush(dest Logger) {
	b.mu.Lock()
	records := b.records
	b.records = nil
	fields := b.fields
	b.mu.Unlock()

	for k, v := range fields {
		dest = dest.WithField(k, v)
	}

	for _, r := range records {
		switch {
		case r.isFormat:
			emitf(dest, r.level, r.format, r.args...)
		default:
			emit(dest, r.level, r.args...)
		}
	}
}

func emit(l Logger, level Level, args ...any) {
	switch level {
	case TraceLevel:
		l.Trace(args...)
	case DebugLevel:
		l.Debug(args...)
	case InfoLevel:
		l.Info(args...)
	case WarnLevel:
		l.Warn(args...)
	default:
		l.Error(args...)
	}
}

func emitf(l Logger, level Level, format string, args ...any) {
	switch level {
	case TraceLevel:
		l.Tracef(format, args...)
	case DebugLevel:
		l.Debugf(format, args...)
	case InfoLevel:
		l.Infof(format, args...)
	case WarnLevel:
		l.Warnf(format, args...)
	default:
		l.Errorf(format, args...)
	}
}
