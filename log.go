package folio

import (
	"io"
	"log"
	"os"
)

var logger = log.New(os.Stderr, "[folio] ", 0)

// SetLogOutput redirects folio's log output. Tests pass a buffer.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

func logf(format string, args ...any) {
	logger.Printf(format, args...)
}

// debugf logs only while a page is in debug mode.
func debugf(format string, args ...any) {
	if globalDebug {
		logger.Printf("debug: "+format, args...)
	}
}
