package daemon

import (
	"fmt"
	"strings"
	"sync/atomic"

	"cflagd/internal/flags"
)

const (
	queriedOther = iota
	queriedCSource
	queriedHeader
)

// Query is one flag request from an editor host, after parsing a DaemonSockRequest.
// The file kind affects logging and stats only: flags are the same for every file.
type Query struct {
	FilePath string
	Options  flags.Options

	fileKind int
}

func isCSourceFileName(fileName string) bool {
	return strings.HasSuffix(fileName, ".c") ||
		strings.HasSuffix(fileName, ".i")
}

func isHeaderFileName(fileName string) bool {
	return strings.HasSuffix(fileName, ".h") ||
		strings.HasSuffix(fileName, ".H") ||
		strings.HasSuffix(fileName, ".hh") ||
		strings.HasSuffix(fileName, ".hxx") ||
		strings.HasSuffix(fileName, ".hpp")
}

func classifyFileName(fileName string) int {
	switch {
	case isCSourceFileName(fileName):
		return queriedCSource
	case isHeaderFileName(fileName):
		return queriedHeader
	default:
		return queriedOther
	}
}

// parseQueryOptions turns "key=value" strings from the wire into flags.Options.
// No keys are recognized yet; unknown ones are skipped, so old daemons keep working
// when a newer host starts sending something.
func parseQueryOptions(optionParts []string) flags.Options {
	opts := flags.Options{}
	for _, part := range optionParts {
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		logDaemon.Info(2, "ignoring unknown query option", key)
	}
	return opts
}

func MakeQuery(req DaemonSockRequest) Query {
	return Query{
		FilePath: req.FilePath,
		Options:  parseQueryOptions(req.Options),
		fileKind: classifyFileName(req.FilePath),
	}
}

// QueryStats counts served queries per file kind; reported when the daemon quits.
type QueryStats struct {
	total    atomic.Uint32
	cSources atomic.Uint32
	headers  atomic.Uint32
	others   atomic.Uint32
}

func (stats *QueryStats) OnQuery(fileKind int) {
	stats.total.Add(1)
	switch fileKind {
	case queriedCSource:
		stats.cSources.Add(1)
	case queriedHeader:
		stats.headers.Add(1)
	default:
		stats.others.Add(1)
	}
}

func (stats *QueryStats) ToLogString() string {
	return fmt.Sprintf("total %d; c sources %d; headers %d; others %d",
		stats.total.Load(), stats.cSources.Load(), stats.headers.Load(), stats.others.Load())
}
