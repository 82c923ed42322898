package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"golang.org/x/sys/unix"

	"cflagd/internal/common"
	"cflagd/internal/flags"
)

// Daemon is created once, in a background process `cflagd`, which is listening for connections via unix socket.
// Editor hosts query it for compiler flags every time a file needs semantic analysis.
// The daemon keeps parsed per-project config files in memory, so repeated queries
// for the same project don't touch the disk.
// With a non-zero idle timeout, `cflagd` quits after it stops receiving new queries
// (the next query via `cflags` falls back to in-process resolution until it's restarted).
type Daemon struct {
	startTime      time.Time
	quitDaemonChan chan int

	provider               *flags.Provider
	enableProjectOverrides bool
	idleTimeout            time.Duration

	listener *DaemonUnixSockListener
	stats    QueryStats

	projectConfigs map[string]*flags.ProjectConfig // map[config file path] => parsed config
	mu             sync.Mutex
}

func MakeDaemon(provider *flags.Provider, enableProjectOverrides bool, idleTimeout time.Duration) *Daemon {
	return &Daemon{
		startTime:              time.Now(),
		quitDaemonChan:         make(chan int),
		provider:               provider,
		enableProjectOverrides: enableProjectOverrides,
		idleTimeout:            idleTimeout,
		projectConfigs:         make(map[string]*flags.ProjectConfig, 1),
	}
}

func (daemon *Daemon) StartListeningUnixSocket(daemonUnixSock string) error {
	daemon.listener = MakeDaemonSockListener()
	return daemon.listener.StartListeningUnixSocket(daemonUnixSock)
}

// StartListening opens the query socket: a listener inherited from systemd socket
// activation when there is one, the configured unix socket path otherwise.
func (daemon *Daemon) StartListening(socketPath string) error {
	activatedListeners, err := activation.Listeners()
	if err != nil {
		logDaemon.Error("systemd socket activation:", err)
	}
	if len(activatedListeners) > 0 {
		daemon.listener = MakeDaemonSockListener()
		daemon.listener.AdoptListener(activatedListeners[0])
		return nil
	}
	return daemon.StartListeningUnixSocket(socketPath)
}

func (daemon *Daemon) ServeUntilNobodyAlive() {
	logDaemon.Info(0, "cflagd started in", time.Since(daemon.startTime).Milliseconds(), "ms")

	var rLimit unix.Rlimit
	_ = unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit)
	logDaemon.Info(0, "env:", "ulimit -n", rLimit.Cur, "; num cpu", runtime.NumCPU(), "; version", common.GetVersion())

	go daemon.WaitForTermSignals()
	go daemon.listener.StartAcceptingConnections(daemon)
	daemon.listener.EnterInfiniteLoopUntilQuit(daemon)
}

func (daemon *Daemon) QuitDaemonGracefully(reason string) {
	logDaemon.Info(0, "daemon quit:", reason)
	logDaemon.Info(0, "queries served:", daemon.stats.ToLogString())

	defer func() { _ = recover() }()
	close(daemon.quitDaemonChan)
}

// HandleQuery computes compiler flags for one editor host request.
// A well-formed request always succeeds: flags don't depend on the file,
// so there is nothing that could fail per query.
func (daemon *Daemon) HandleQuery(req DaemonSockRequest) DaemonSockResponse {
	if req.FilePath == "" {
		return DaemonSockResponse{
			ExitCode: 1,
			Stderr:   "no file path in query",
		}
	}

	query := MakeQuery(req)
	daemon.stats.OnQuery(query.fileKind)

	provider := daemon.provider
	if daemon.enableProjectOverrides {
		if configPath := flags.FindProjectConfig(query.FilePath); configPath != "" {
			if projectConfig := daemon.getOrParseProjectConfig(configPath); projectConfig != nil {
				provider = provider.WithProjectConfig(projectConfig)
			}
		}
	}

	settings := provider.SettingsForFile(query.FilePath, query.Options)
	logDaemon.Info(1, "served flags for", query.FilePath)

	return DaemonSockResponse{
		ExitCode: 0,
		Flags:    settings.Flags,
	}
}

func (daemon *Daemon) getOrParseProjectConfig(configPath string) *flags.ProjectConfig {
	daemon.mu.Lock()
	projectConfig, exists := daemon.projectConfigs[configPath]
	daemon.mu.Unlock()
	if exists {
		return projectConfig
	}

	projectConfig, err := flags.ParseProjectConfig(configPath)
	if err != nil {
		logDaemon.Error("failed to parse", configPath, err)
		projectConfig = nil // negative result is cached too, one complaint per file
	}

	daemon.mu.Lock()
	daemon.projectConfigs[configPath] = projectConfig
	daemon.mu.Unlock()
	return projectConfig
}

func (daemon *Daemon) WaitForTermSignals() {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	for {
		select {
		case <-daemon.quitDaemonChan:
			return

		case sig := <-signals:
			daemon.QuitDaemonGracefully(fmt.Sprintf("got %s", sig))
		}
	}
}
