// Package cli holds the marionette command tree.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"marionette/internal/ui"
)

type globalFlags struct {
	configPath string
	asset      string
	verbose    bool
}

// console is where subcommands mirror their log lines: stderr with --verbose,
// nowhere otherwise.
func (g *globalFlags) console(cmd *cobra.Command) io.Writer {
	if g.verbose {
		return cmd.ErrOrStderr()
	}
	return nil
}

// NewRootCmd builds the command tree. Running it without a subcommand starts
// the interactive avatar UI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "marionette",
		Short: "Drive an animated avatar from text",
		Long: `Marionette plays the animation clips of a rigged avatar.

Pick clips from the browser, type commands such as "walk then jump"
(English or Vietnamese), or chat with the receptionist assistant and
let it choose gestures for you.

The built-in panda rig is used unless --asset points at a .glb/.gltf file.
Set OPENROUTER_API_KEY to enable model suggestions and chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/marionette/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.asset, "asset", "", "avatar .glb/.gltf file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging, echoed to stderr by subcommands")

	cmd.AddCommand(newClipsCmd(flags))
	cmd.AddCommand(newMatchCmd(flags))
	cmd.AddCommand(newAskCmd(flags))
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func runTUI(flags *globalFlags) error {
	sched := ui.NewScheduler()
	a, err := newApp(flags, sched, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	a.ctl.Greet(a.cfg.Assistant.Greeting)
	opts := ui.Options{
		Controller: a.ctl,
		Stage:      a.stage,
		Transcript: a.transcript,
		Logger:     a.logger.Component("ui"),
	}
	if a.client != nil {
		opts.LLM = a.client
	}
	a.log.Info().Bool("offline", a.Offline()).Msg("starting ui")
	return ui.Run(opts, sched)
}
