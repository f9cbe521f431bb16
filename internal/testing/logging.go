package simtesting

import (
	"os"

	"github.com/go-logr/logr"

	"github.com/sttts/simconsole/internal/logging"
)

// SetupLogging installs a shared logr for controller-runtime and klog.
// Logs are discarded unless DEBUG is set, then they go to stderr in
// development mode.
func SetupLogging() logr.Logger {
	opts := logging.Options{}
	if logging.DebugFromEnv() {
		opts = logging.Options{Debug: true, Writer: os.Stderr}
	}
	return logging.Setup(opts)
}
