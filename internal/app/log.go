package app

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/mediasfu/recordctl/internal"
	log "github.com/sirupsen/logrus"
)

func configureLog() {
	log.SetOutput(os.Stdout)

	trim := func(fn string) string {
		return strings.Replace(fn, internal.ModName, ".", 1)
	}
	if isTty() {
		log.SetFormatter(&log.TextFormatter{
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return fmt.Sprintf("%s:%d", path.Base(f.File), f.Line), fmt.Sprintf("> %s()", trim(f.Function))
			},
			FullTimestamp: true,
		})
	} else {
		log.SetFormatter(&log.JSONFormatter{CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return fmt.Sprintf("%s()", trim(f.Function)), fmt.Sprintf("%s:%d", f.File, f.Line)
		}})
	}

	level := logLevel(cfg.Log.Level)
	if flags.debug || cfg.Debug {
		level = log.DebugLevel
	}
	if level == log.GetLevel() {
		return
	}
	log.SetReportCaller(level >= log.DebugLevel)
	log.SetLevel(level)
	log.Debugf("log level set to %s", level)
}

// logLevel parses a configured level, falling back to info.
func logLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		log.Warnf("Invalid log level %s, using info", s)
		return log.InfoLevel
	}
	return level
}

func isTty() bool {
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		return true
	}
	return false
}
