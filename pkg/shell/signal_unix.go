//go:build unix

package shell

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"src.slush.sh/pkg/sys"
)

// Relays signals received by the shell until the returned function is called.
func initSignal(stderr io.Writer, children *sys.ChildNotifier) func() {
	sigCh := sys.NotifySignals()
	go func() {
		for sig := range sigCh {
			if !ignoreSignal(sig) {
				logger.Println("signal", signalName(sig))
			}
			handleSignal(sig, stderr, children)
		}
	}()
	return func() { sys.StopSignals(sigCh) }
}

func ignoreSignal(sig os.Signal) bool {
	// SIGURG isn't interesting since it is used internally by the Go runtime on UNIX and occurs
	// with great frequency.
	return sig.(syscall.Signal) == syscall.SIGURG
}

func signalName(sig os.Signal) string {
	return unix.SignalName(sig.(syscall.Signal))
}

func handleSignal(sig os.Signal, stderr io.Writer, children *sys.ChildNotifier) {
	switch sig {
	case syscall.SIGHUP:
		syscall.Kill(0, syscall.SIGHUP)
		os.Exit(0)
	case syscall.SIGUSR1:
		fmt.Fprint(stderr, sys.DumpStack())
	case syscall.SIGCHLD:
		children.Notify()
	}
}
