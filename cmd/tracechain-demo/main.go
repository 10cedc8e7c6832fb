package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newDemoCommand() *cobra.Command {
	opts := demoOptions{}
	cmd := &cobra.Command{
		Use:           "tracechain-demo",
		Short:         "Raise a guest error across nested isolates and print its trace chain.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.CPUProfile != "" {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.CPUProfile), profile.Quiet).Stop()
			}
			return runDemo(cmd.OutOrStdout(), logrus.StandardLogger(), opts)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setLogLevel(cmd.Flags())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Depth, "depth", 3, "Number of nested isolates to run")
	flags.BoolVar(&opts.Eval, "eval", false, "Throw from evaluated code instead of a named function")
	flags.BoolVar(&opts.DisposeInner, "dispose-inner", false, "Dispose the throwing isolate before rendering")
	flags.StringVar(&opts.LogLevel, "log-level", "warning", `Set the logging level ("debug"|"info"|"warn"|"error"|"fatal")`)
	flags.StringVar(&opts.CPUProfile, "cpuprofile", "", "Write a CPU profile into this directory")

	return cmd
}

func setLogLevel(flags *pflag.FlagSet) error {
	level, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("unable to parse logging level: %s", level)
	}
	logrus.SetLevel(lvl)
	return nil
}

func main() {
	logrus.SetOutput(os.Stderr)

	cmd := newDemoCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
