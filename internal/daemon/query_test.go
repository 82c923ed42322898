package daemon

import (
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	if err := MakeLoggerDaemon("stderr", 0); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestClassifyFileName(t *testing.T) {
	tests := []struct {
		fileName string
		expected int
	}{
		{"foo.c", queriedCSource},
		{"preprocessed.i", queriedCSource},
		{"foo.h", queriedHeader},
		{"FOO.H", queriedHeader},
		{"tmpl.hh", queriedHeader},
		{"tmpl.hpp", queriedHeader},
		{"tmpl.hxx", queriedHeader},
		{"notes.txt", queriedOther},
		{"main.cpp", queriedOther},
		{"", queriedOther},
	}
	for _, test := range tests {
		if got := classifyFileName(test.fileName); got != test.expected {
			t.Errorf("classifyFileName(%q) = %d, expected %d", test.fileName, got, test.expected)
		}
	}
}

func TestMakeQueryIgnoresUnknownOptions(t *testing.T) {
	req := DaemonSockRequest{
		FilePath: "foo.c",
		Options:  []string{"future_key=1", ""},
	}

	query := MakeQuery(req)

	if query.FilePath != "foo.c" || query.fileKind != queriedCSource {
		t.Errorf("unexpected query: %+v", query)
	}
}

func TestQueryStats(t *testing.T) {
	stats := QueryStats{}
	stats.OnQuery(queriedCSource)
	stats.OnQuery(queriedCSource)
	stats.OnQuery(queriedHeader)
	stats.OnQuery(queriedOther)

	logged := stats.ToLogString()
	if !strings.Contains(logged, "total 4") || !strings.Contains(logged, "c sources 2") {
		t.Errorf("unexpected stats: %s", logged)
	}
}
