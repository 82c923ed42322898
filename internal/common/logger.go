package common

import (
	"fmt"
	"io"
	"log"
	"os"
)

// LoggerWrapper is a leveled wrapper around log.Logger.
// Verbosity 0 prints only the most important events, 1 adds per-query details,
// 2 and above is for debugging.
type LoggerWrapper struct {
	verbosity int
	logger    *log.Logger
}

// MakeLogger creates a logger writing to logFileName ("stderr" and "stdout" are
// recognized as special values). appendPid prefixes every line with the process pid,
// which helps when several short-lived processes share one log file.
func MakeLogger(logFileName string, verbosity int, appendPid bool) (*LoggerWrapper, error) {
	var sink io.Writer

	switch logFileName {
	case "", "stderr":
		sink = os.Stderr
	case "stdout":
		sink = os.Stdout
	default:
		if err := MkdirForFile(logFileName); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logFileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		sink = f
	}

	prefix := ""
	if appendPid {
		prefix = fmt.Sprintf("[%d] ", os.Getpid())
	}

	return &LoggerWrapper{
		verbosity: verbosity,
		logger:    log.New(sink, prefix, log.LstdFlags),
	}, nil
}

func (l *LoggerWrapper) Info(level int, args ...any) {
	if level <= l.verbosity {
		l.logger.Println(append([]any{"INFO"}, args...)...)
	}
}

func (l *LoggerWrapper) Error(args ...any) {
	l.logger.Println(append([]any{"ERROR"}, args...)...)
}
