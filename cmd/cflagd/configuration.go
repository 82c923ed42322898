package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	SocketPath         string
	HomeDir            string // empty means take $HOME of the daemon process
	Std                string // default C dialect for -std; empty means no -std token
	ProjectOverrides   bool
	IdleTimeoutSeconds int // 0 disables idle shutdown
	LogFileName        string
	LogLevel           int
}

func ParseConfiguration(filePath string) (*Configuration, error) {
	config := Configuration{
		SocketPath:         "/run/cflagd.sock",
		ProjectOverrides:   true,
		IdleTimeoutSeconds: 0,
		LogFileName:        "stderr",
		LogLevel:           1,
	}
	if _, err := toml.DecodeFile(filePath, &config); err != nil {
		if os.IsNotExist(err) { // no config file at all is fine, defaults apply
			return &config, nil
		}
		return nil, err
	}
	return &config, nil
}
