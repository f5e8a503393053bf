// Command smrs is a command line client for the smrs link-saving service.
//
//	smrs [-s server] [-l level] [-f cookie-file] [-c config] <command>
//
// Commands:
//
//	session               print the current session
//	session set <value>   replace the session
//	list                  print saved links, one JSON object per line
//	save <url> [token]    save a link and print its token
//	forget <token>        forget a link
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/smrs/internal/app"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run reports failures through the app's alerts, except when the app
// itself cannot be built.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Error closing the cookie file:", err)
		if runErr == nil {
			return err
		}
	}

	return runErr
}
