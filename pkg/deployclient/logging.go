package deployclient

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/serverless/platform-client/pkg/logging"
	"github.com/serverless/platform-client/pkg/serverlessfile"
)

func SetupLogging(cfg Config) {
	log.SetOutput(os.Stderr)

	format := "text"
	if cfg.Actions {
		format = "actions"
	}

	level := "info"
	if cfg.Quiet {
		level = "error"
	}

	// Both values are known to be valid.
	_ = logging.Setup(level, format)
}

func printErrorContext(path string, err error) {
	line, er := serverlessfile.DetectErrorLine(err.Error())
	if er != nil {
		return
	}
	content, er := os.ReadFile(path)
	if er != nil {
		return
	}
	for _, l := range serverlessfile.ErrorContext(string(content), line) {
		fmt.Println(l)
	}
}
