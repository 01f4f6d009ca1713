package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New はlogrusのロガーを作る。prodはJSON、それ以外はテキスト。
func New(level string, goEnv string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, goEnv)
}

func NewWithOutput(w io.Writer, level string, goEnv string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if goEnv == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
