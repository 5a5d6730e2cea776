package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

type globalFlags struct {
	configPath string
	profile    string
	debug      bool
	async      bool
	noColor    bool
}

// NewRootCommand builds the restcall command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:     "restcall",
		Short:   "Send one REST request and report its status class",
		Version: version,
		Long: `restcall sends a single HTTP request, classifies the response status as
successful, redirect, client error or server error, and prints the outcome.
Redirects are reported, never followed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Profile file (YAML)")
	pf.StringVarP(&flags.profile, "profile", "p", "", "Profile to use from the config file")
	pf.BoolVar(&flags.debug, "debug", false, "Trace the request lifecycle on stderr")
	pf.BoolVar(&flags.async, "async", false, "Dispatch in the background and wait for the outcome")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	for _, def := range verbCommands {
		root.AddCommand(newVerbCommand(flags, def))
	}
	root.AddCommand(newAuthCommand(flags))
	return root
}

// Execute runs the command line and reports errors on stderr.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		red := color.New(color.FgRed)
		if noColor, _ := root.PersistentFlags().GetBool("no-color"); noColor || !isTerminal(os.Stderr) {
			red.DisableColor()
		}
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
