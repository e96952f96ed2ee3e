package common

import (
	"fmt"
	"os"
)

// Logger represents a minimal levelled logger. *logrus.Logger satisfies it.
type Logger interface {
	// Debugf handles debug level messages
	Debugf(format string, args ...interface{})
	// Infof handles info level messages
	Infof(format string, args ...interface{})
	// Warnf handles warn level messages
	Warnf(format string, args ...interface{})
	// Errorf handles error level messages
	Errorf(format string, args ...interface{})
	// Fatalf handles fatal level messages, and must exit the application
	Fatalf(format string, args ...interface{})
	// Panicf handles panic level messages, and must panic the application
	Panicf(format string, args ...interface{})
}

// StubLogger satisfies the Logger interface, and simply does nothing with
// received messages
type StubLogger struct{}

// Debugf handles debug level messages
func (l *StubLogger) Debugf(format string, args ...interface{}) {}

// Infof handles info level messages
func (l *StubLogger) Infof(format string, args ...interface{}) {}

// Warnf handles warn level messages
func (l *StubLogger) Warnf(format string, args ...interface{}) {}

// Errorf handles error level messages
func (l *StubLogger) Errorf(format string, args ...interface{}) {}

// Fatalf handles fatal level messages, exits the application
func (l *StubLogger) Fatalf(format string, args ...interface{}) {
	os.Exit(1)
}

// Panicf handles panic level messages, and panics the application
func (l *StubLogger) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

type logPrefixer struct {
	log    Logger
	prefix string
}

func (l *logPrefixer) Debugf(format string, args ...interface{}) {
	l.log.Debugf(l.prefix+format, args...)
}

func (l *logPrefixer) Infof(format string, args ...interface{}) {
	l.log.Infof(l.prefix+format, args...)
}

func (l *logPrefixer) Warnf(format string, args ...interface{}) {
	l.log.Warnf(l.prefix+format, args...)
}

func (l *logPrefixer) Errorf(format string, args ...interface{}) {
	l.log.Errorf(l.prefix+format, args...)
}

func (l *logPrefixer) Fatalf(format string, args ...interface{}) {
	l.log.Fatalf(l.prefix+format, args...)
}

func (l *logPrefixer) Panicf(format string, args ...interface{}) {
	l.log.Panicf(l.prefix+format, args...)
}

const logPrefix = `[argbled] `

var (
	// Log holds the global logger used by argbled, can be set via SetLogger() in
	// the argbled package
	Log Logger
)

func init() {
	Log = &logPrefixer{log: new(StubLogger), prefix: logPrefix}
}

// SetLogger wraps the supplied logger with a prefixer to denote argbled logs.
// A nil logger restores the StubLogger.
func SetLogger(logger Logger) {
	if logger == nil {
		logger = new(StubLogger)
	}
	Log = &logPrefixer{log: logger, prefix: logPrefix}
}

// HexString formats a payload the way probe and dispatch logs print it:
// upper-case, space separated.
func HexString(data []byte) string {
	if len(data) == 0 {
		return ``
	}
	buf := make([]byte, 0, len(data)*3-1)
	const digits = `0123456789ABCDEF`
	for i, b := range data {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, digits[b>>4], digits[b&0x0F])
	}
	return string(buf)
}
