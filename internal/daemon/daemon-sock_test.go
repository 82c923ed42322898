package daemon

import (
	"bufio"
	"fmt"
	"net"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"cflagd/internal/flags"
)

func startTestDaemon(t *testing.T) (*Daemon, string) {
	t.Helper()

	d := MakeDaemon(flags.MakeProvider("/home/alice"), false, 0)
	sockPath := filepath.Join(t.TempDir(), "cflagd.sock")
	if err := d.StartListeningUnixSocket(sockPath); err != nil {
		t.Fatal(err)
	}
	go d.listener.StartAcceptingConnections(d)
	t.Cleanup(func() {
		d.QuitDaemonGracefully("test done")
		_ = d.listener.netListener.Close()
	})

	return d, sockPath
}

func queryOverSocket(t *testing.T, sockPath string, rawRequest string) []string {
	t.Helper()

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(rawRequest)); err != nil {
		t.Fatal(err)
	}
	slice, err := bufio.NewReader(conn).ReadSlice(0)
	if err != nil {
		t.Fatal(err)
	}

	return strings.Split(string(slice[0:len(slice)-1]), "\b")
}

func TestSockRoundTrip(t *testing.T) {
	_, sockPath := startTestDaemon(t)

	responseParts := queryOverSocket(t, sockPath, "foo.c\b\x00")
	if len(responseParts) != 3 {
		t.Fatalf("expected 3 response parts, got %v", responseParts)
	}
	if responseParts[0] != "0" {
		t.Errorf("exit code %s, stderr %q", responseParts[0], responseParts[2])
	}

	servedFlags := strings.Split(responseParts[1], " ")
	for _, expected := range []string{"-x", "c", "-Wall", "-Wpointer-arith", "-fPIC", "-D_GNU_SOURCE", "-I.", "-I/home/alice/include"} {
		if !slices.Contains(servedFlags, expected) {
			t.Errorf("token %s missing in %v", expected, servedFlags)
		}
	}
}

func TestSockMalformedRequest(t *testing.T) {
	_, sockPath := startTestDaemon(t)

	// no \b separator at all: the daemon answers with a bare error terminator
	responseParts := queryOverSocket(t, sockPath, "foo.c\x00")
	if len(responseParts) != 1 || responseParts[0] != "" {
		t.Errorf("expected an empty error response, got %v", responseParts)
	}
}

func TestSockParallelQueries(t *testing.T) {
	d, sockPath := startTestDaemon(t)

	// keep evaluating the idle condition while queries update the alive timestamp,
	// the way EnterInfiniteLoopUntilQuit does concurrently with serving
	idleReaderQuit := make(chan struct{})
	idleReaderDone := make(chan struct{})
	go func() {
		defer close(idleReaderDone)
		for {
			select {
			case <-idleReaderQuit:
				return
			default:
				if d.listener.IdleFor() > time.Hour {
					t.Error("fresh daemon reported as idle")
					return
				}
			}
		}
	}()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			responseParts := queryOverSocket(t, sockPath, fmt.Sprintf("file%d.c\b\x00", i))
			if len(responseParts) != 3 || responseParts[0] != "0" {
				t.Errorf("query %d failed: %v", i, responseParts)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	close(idleReaderQuit)
	<-idleReaderDone

	if total := d.stats.total.Load(); total != 8 {
		t.Errorf("stats counted %d queries, expected 8", total)
	}
}
