package egg

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const (
	ANSI_RESET       = "\x1b[0;0m"
	ANSI_BLUE        = "\x1b[34;22m"
	ANSI_GREEN       = "\x1b[32;22m"
	ANSI_YELLOW      = "\x1b[33;22m"
	ANSI_RED         = "\x1b[31;22m"
	ANSI_BLUE_BOLD   = "\x1b[34;1m"
	ANSI_GREEN_BOLD  = "\x1b[32;1m"
	ANSI_YELLOW_BOLD = "\x1b[33;1m"
	ANSI_RED_BOLD    = "\x1b[31;1m"
)

var (
	log      = commonlog.GetLogger("egg")
	parseLog = commonlog.GetLogger("egg.parse")
	evalLog  = commonlog.GetLogger("egg.eval")
)

var colorOutput = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// SetColor turns ANSI colouring of interactive and error output on or off.
// By default it is on only when stdout is a terminal.
func SetColor(enabled bool) {
	colorOutput = enabled
}

// ConfigureLogging sets the verbosity of diagnostic logging and, if path
// is not empty, sends it to that file instead of stderr.
func ConfigureLogging(verbosity int, path string) {
	if path == "" {
		commonlog.Configure(verbosity, nil)
	} else {
		commonlog.Configure(verbosity, &path)
	}
}

// Color wraps s in the given ANSI escape when colour output is enabled.
func Color(code, s string) string {
	if !colorOutput {
		return s
	}
	return code + s + ANSI_RESET
}

func LogDebug(args ...string) {
	log.Debug(strings.Join(args, " "))
}

func LogDebugf(s string, args ...interface{}) {
	log.Debugf(s, args...)
}

func LogInteractive(args ...string) {
	fmt.Println(Color(ANSI_GREEN, strings.Join(args, " ")))
}

func LogInteractivef(s string, args ...interface{}) {
	LogInteractive(fmt.Sprintf(s, args...))
}

func LogSafeErr(reason int, args ...string) {
	prefix := reasonName(reason) + ": "
	if colorOutput {
		prefix = ANSI_RED_BOLD + prefix + ANSI_RED
	}
	msg := prefix + strings.Join(args, " ")
	if colorOutput {
		msg += ANSI_RESET
	}
	fmt.Fprintln(os.Stderr, msg)
}

func LogErr(reason int, args ...string) {
	LogSafeErr(reason, args...)
	os.Exit(reason)
}

func LogErrf(reason int, s string, args ...interface{}) {
	LogErr(reason, fmt.Sprintf(s, args...))
}
