package main

import (
	"fmt"
	"os"
	"time"

	sdaemon "github.com/coreos/go-systemd/v22/daemon"

	"cflagd/internal/common"
	"cflagd/internal/daemon"
	"cflagd/internal/flags"
)

func failedStartDaemon(err any) {
	_, _ = fmt.Fprintln(os.Stderr, "cflagd not started:", err)
	os.Exit(1)
}

func makeProvider(configuration *Configuration) (*flags.Provider, error) {
	homeDir := configuration.HomeDir
	if homeDir == "" {
		var exists bool
		homeDir, exists = os.LookupEnv("HOME")
		if !exists {
			return nil, flags.ErrHomeNotSet
		}
	}

	if configuration.Std == "" {
		return flags.MakeProvider(homeDir), nil
	}
	return flags.MakeProviderWithStd(homeDir, configuration.Std), nil
}

func main() {
	showVersionAndExit := common.CmdEnvBool("Show version and exit.", false,
		"version", "")
	showVersionAndExitShort := common.CmdEnvBool("Show version and exit.", false,
		"v", "")
	configFileName := common.CmdEnvString("Configuration file.", "/etc/cflagd/daemon.toml",
		"config", "CFLAGD_CONFIG")

	common.ParseCmdFlagsCombiningWithEnv()

	if *showVersionAndExit || *showVersionAndExitShort {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	configuration, err := ParseConfiguration(*configFileName)
	if err != nil {
		failedStartDaemon("Failed to parse configuration: " + err.Error())
	}

	if err := daemon.MakeLoggerDaemon(configuration.LogFileName, configuration.LogLevel); err != nil {
		failedStartDaemon(err)
	}

	provider, err := makeProvider(configuration)
	if err != nil {
		failedStartDaemon(err)
	}

	d := daemon.MakeDaemon(provider, configuration.ProjectOverrides, time.Duration(configuration.IdleTimeoutSeconds)*time.Second)

	// when launched as a systemd socket-activated unit, the socket is already open
	if err = d.StartListening(configuration.SocketPath); err != nil {
		failedStartDaemon(err)
	}

	_, _ = sdaemon.SdNotify(false, sdaemon.SdNotifyReady)
	d.ServeUntilNobodyAlive()
	_, _ = sdaemon.SdNotify(false, sdaemon.SdNotifyStopping)
}
