package run

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

type colorFunc func(a ...any) string

// Logger outputs the result of each upsert.
type Logger struct {
	stderr io.Writer
	red    colorFunc
	green  colorFunc
}

func NewLogger(stderr io.Writer) *Logger {
	return &Logger{
		red:    color.New(color.FgRed).SprintFunc(),
		green:  color.New(color.FgGreen).SprintFunc(),
		stderr: stderr,
	}
}

const levelError = "error"

func (l *Logger) Output(level, message string, entity *port.Entity) {
	s := l.green("INFO")
	if level == levelError {
		s = l.red("ERROR")
	}
	fmt.Fprintf(l.stderr, "%s %s %s/%s\n", s, message, entity.Blueprint, entity.Identifier)
}
