package daemon

import "cflagd/internal/common"

// anywhere in the daemon code, use logDaemon.Info() and other methods for logging
var logDaemon *common.LoggerWrapper

func MakeLoggerDaemon(logFileName string, verbosity int) error {
	var err error
	logDaemon, err = common.MakeLogger(logFileName, verbosity, false)
	return err
}
