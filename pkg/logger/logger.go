package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New создает логгер с выводом в stdout
func New(logLevel, logFormat string) *logrus.Logger {
	return NewWithOutput(logLevel, logFormat, os.Stdout)
}

// NewWithOutput создает логгер с заданным уровнем, форматом (json|text) и приемником
func NewWithOutput(logLevel, logFormat string, out io.Writer) *logrus.Logger {
	log := logrus.New()

	switch strings.ToLower(logFormat) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	log.SetOutput(out)

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)
	return log
}
