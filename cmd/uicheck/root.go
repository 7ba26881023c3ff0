package main

import (
	"fmt"
	"io"
	"os"

	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	logLevel  string
	logFormat string
	envFiles  []string
	noColor   bool
}

type rootCommand struct {
	flags  globalFlags
	logger *logrus.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCommand() *cobra.Command {
	return newRootCommandWithOutput(os.Stdout, os.Stderr)
}

func newRootCommandWithOutput(stdout, stderr io.Writer) *cobra.Command {
	c := &rootCommand{
		logger: logrus.New(),
		stdout: stdout,
		stderr: stderr,
	}

	cmd := &cobra.Command{
		Use:          "uicheck",
		Short:        "Read-only UI checks for the demo bank",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.setupLogger()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&c.flags.logFormat, "log-format", "text", "log output format (text or json)")
	flags.StringArrayVar(&c.flags.envFiles, "env-file", []string{".env"}, "dotenv file to read settings from, may be repeated")
	flags.BoolVar(&c.flags.noColor, "no-color", false, "disable colored output")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.AddCommand(newRunCommand(c), newListCommand(c))
	return cmd
}

func (c *rootCommand) setupLogger() error {
	level, err := logrus.ParseLevel(c.flags.logLevel)
	if err != nil {
		return err
	}
	c.logger.SetLevel(level)
	c.logger.SetOutput(c.stderr)

	switch c.flags.logFormat {
	case "json":
		c.logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		c.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: c.flags.noColor,
		})
	default:
		return fmt.Errorf("unknown log format %q", c.flags.logFormat)
	}
	return nil
}

func (c *rootCommand) loadConfig() (config.Config, error) {
	return config.Load(c.flags.envFiles...)
}
