package main

import (
	"encoding/binary"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/zhubonan/castepxbin/internal/logger"
)

var (
	filePath  string
	endian    string
	logLevel  string
	logFormat string
)

func commonFileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "path to .castep_bin or .check file",
			Destination: &filePath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "endian",
			Usage:       "byte order of the file (big, little)",
			Value:       "big",
			Destination: &endian,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Value:       "text",
			Destination: &logFormat,
		},
	}
}

func byteOrder() binary.ByteOrder {
	if endian == "little" {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func newLogger(level, format string) logger.Logger {
	if format == "json" {
		return logger.JSON(os.Stderr, logger.ParseLevel(level))
	}
	return logger.Text(os.Stderr, logger.ParseLevel(level))
}
