package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"agora/internal/comparacion"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(value, color string, colorize bool) string {
	if !colorize || color == "" {
		return value
	}
	return color + value + ansiReset
}

func estadoColor(estado int) string {
	switch estado {
	case comparacion.EstadoElegible:
		return ansiGreen
	case comparacion.EstadoNoElegible:
		return ansiRed
	default:
		return ansiYellow
	}
}
