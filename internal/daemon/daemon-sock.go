package daemon

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// DaemonUnixSockListener is created when `cflagd` starts.
// It listens to a unix socket for flag queries from editor hosts (usually piped
// through the lightweight `cflags` client, one process per query).
// Request/response transferred via this socket are represented as simple C-style strings with \0 delimiters, see below.
type DaemonUnixSockListener struct {
	activeConnections int32
	lastTimeAlive     atomic.Int64 // unix nanos; written by accept/request goroutines, read by the idle check
	netListener       net.Listener
}

type DaemonSockRequest struct {
	FilePath string
	Options  []string
}

type DaemonSockResponse struct {
	ExitCode int
	Flags    []string
	Stderr   string
}

func MakeDaemonSockListener() *DaemonUnixSockListener {
	listener := &DaemonUnixSockListener{
		activeConnections: 0,
	}
	listener.lastTimeAlive.Store(time.Now().UnixNano())
	return listener
}

func (listener *DaemonUnixSockListener) StartListeningUnixSocket(daemonUnixSock string) (err error) {
	_ = os.Remove(daemonUnixSock)
	listener.netListener, err = net.Listen("unix", daemonUnixSock)
	return
}

// AdoptListener takes over an already open listener, e.g. one inherited
// from systemd socket activation.
func (listener *DaemonUnixSockListener) AdoptListener(netListener net.Listener) {
	listener.netListener = netListener
}

// IdleFor reports how long ago the last query was accepted or answered.
func (listener *DaemonUnixSockListener) IdleFor() time.Duration {
	return time.Since(time.Unix(0, listener.lastTimeAlive.Load()))
}

func (listener *DaemonUnixSockListener) StartAcceptingConnections(daemon *Daemon) {
	for {
		conn, err := listener.netListener.Accept()
		if err != nil {
			select {
			case <-daemon.quitDaemonChan:
				return
			default:
				logDaemon.Error("daemon accept error:", err)
			}
		} else {
			listener.lastTimeAlive.Store(time.Now().UnixNano())
			go listener.onRequest(conn, daemon) // one editor host query
		}
	}
}

func (listener *DaemonUnixSockListener) EnterInfiniteLoopUntilQuit(daemon *Daemon) {
	for {
		select {
		case <-daemon.quitDaemonChan:
			_ = listener.netListener.Close() // Accept() will return an error immediately
			return

		case <-time.After(5 * time.Second):
			if daemon.idleTimeout == 0 {
				continue
			}
			nActive := atomic.LoadInt32(&listener.activeConnections)
			if nActive == 0 && listener.IdleFor() > daemon.idleTimeout {
				daemon.QuitDaemonGracefully("no queries receiving anymore")
			}
		}
	}
}

// onRequest parses a string-encoded message from an editor host and calls Daemon.HandleQuery.
// After the flags are computed, we answer back and the host connection dies.
// Request message format:
// "{FilePath}\b{Options...}\0"
// Response message format:
// "{ExitCode}\b{Flags...}\b{Stderr}\0"
func (listener *DaemonUnixSockListener) onRequest(conn net.Conn, daemon *Daemon) {
	slice, err := bufio.NewReaderSize(conn, 16*1024).ReadSlice(0)
	if err != nil {
		logDaemon.Error("couldn't read from socket", err)
		listener.respondErr(conn)
		return
	}
	reqParts := strings.Split(string(slice[0:len(slice)-1]), "\b") // -1 to strip off the trailing '\0'
	if len(reqParts) < 2 {
		logDaemon.Error("couldn't read from socket", reqParts)
		listener.respondErr(conn)
		return
	}
	request := DaemonSockRequest{
		FilePath: reqParts[0],
		Options:  strings.Split(reqParts[1], " "),
	}

	atomic.AddInt32(&listener.activeConnections, 1)

	response := daemon.HandleQuery(request)

	atomic.AddInt32(&listener.activeConnections, -1)
	listener.lastTimeAlive.Store(time.Now().UnixNano())

	listener.respondOk(conn, &response)
}

func (listener *DaemonUnixSockListener) respondOk(conn net.Conn, resp *DaemonSockResponse) {
	_, _ = conn.Write(fmt.Appendf(nil, "%d\b%s\b%s\000", resp.ExitCode, strings.Join(resp.Flags, " "), resp.Stderr))
	_ = conn.Close()
}

func (listener *DaemonUnixSockListener) respondErr(conn net.Conn) {
	_, _ = conn.Write([]byte("\000"))
	_ = conn.Close()
}
