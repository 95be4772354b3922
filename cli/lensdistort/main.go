// Package main is the lensdistort command itself.
package main

import (
	"os"

	"go.viam.com/lensdistort/cli"
	"go.viam.com/lensdistort/logging"
)

func main() {
	logger := logging.NewBlankLogger("lensdistort")
	logger.AddAppender(logging.NewWriterAppender(os.Stderr))
	logging.ReplaceGlobal(logger)

	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
