package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// PrintfLogger exposes a Logger through the Printf/Fatalf pair expected by
// libraries such as goose. Printf lines are logged at Debug.
type PrintfLogger struct {
	l Logger
}

func NewPrintfLogger(l Logger) *PrintfLogger {
	return &PrintfLogger{l: l}
}

func (p *PrintfLogger) Printf(format string, v ...any) {
	p.l.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at Error and exits the process.
func (p *PrintfLogger) Fatalf(format string, v ...any) {
	p.l.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	exitFn(1)
}

var exitFn = os.Exit
