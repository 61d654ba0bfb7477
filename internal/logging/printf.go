package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// PrintfLogger exposes a Logger through the Printf/Fatalf pair that
// libraries such as goose log through.
type PrintfLogger struct {
	l    Logger
	exit func(int)
}

func NewPrintfLogger(l Logger) *PrintfLogger {
	return &PrintfLogger{l: l, exit: os.Exit}
}

// Printf logs the formatted line at info level.
func (p *PrintfLogger) Printf(format string, v ...any) {
	p.l.Info(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs the formatted line at error level and exits with status 1.
func (p *PrintfLogger) Fatalf(format string, v ...any) {
	p.l.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	p.exit(1)
}
