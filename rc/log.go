package rc

import (
	"sync/atomic"

	"github.com/go-logr/logr"
)

var pkgLogger atomic.Pointer[logr.Logger]

func init() {
	SetLogger(logr.Discard())
}

// SetLogger replaces the logger used for objects constructed without
// WithLogger. Destroy events are logged at V(1), handles released by the
// garbage collector at V(0).
func SetLogger(l logr.Logger) {
	l = l.WithName("rc")
	pkgLogger.Store(&l)
}

func logger() logr.Logger {
	return *pkgLogger.Load()
}
