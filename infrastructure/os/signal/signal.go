// Package signal turns process interrupts into a shutdown channel.
package signal

import (
	"os"
	"os/signal"
	"syscall"
)

// interruptSignals defines the signals that are handled to do a clean shutdown.
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// InterruptListener listens for OS Signals such as SIGINT (Ctrl+C) and
// SIGTERM. It returns a channel that is closed when the first signal arrives.
// Further signals are logged and otherwise ignored while shutting down.
func InterruptListener() <-chan struct{} {
	c := make(chan struct{})
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)

		sig := <-interruptChannel
		log.Infof("Received signal (%s). Shutting down...", sig)
		close(c)

		for sig := range interruptChannel {
			log.Infof("Received signal (%s). Already shutting down...", sig)
		}
	}()

	return c
}

// InterruptRequested returns true when the channel returned by
// InterruptListener was closed.
func InterruptRequested(interrupted <-chan struct{}) bool {
	select {
	case <-interrupted:
		return true
	default:
	}

	return false
}
