package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marionette/internal/anim"
	"marionette/internal/catalog"
	"marionette/internal/controller"
	"marionette/internal/ui"
)

// maxSimulatedSteps bounds --simulate output.
const maxSimulatedSteps = 50

func newClipsCmd(flags *globalFlags) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "List the avatar's animation clips",
		Long: `List the animation clips of the configured avatar, grouped by category.

Examples:
  marionette clips
  marionette clips --full
  marionette clips --asset ./robot.glb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, anim.NewManualScheduler(), flags.console(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if full {
				for _, clip := range a.ctl.Clips() {
					fmt.Fprintln(out, clip)
				}
				return nil
			}
			cats := a.ctl.Categories()
			fmt.Fprintf(out, "%d clips\n", len(a.ctl.Clips()))
			for _, cat := range cats.Active() {
				label := fmt.Sprintf("%s (%d)", cat, len(cats[cat]))
				fmt.Fprintf(out, "  %-18s %s\n", label, catalog.Names(cats[cat]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print full clip names, one per line")
	return cmd
}

func newMatchCmd(flags *globalFlags) *cobra.Command {
	var noModel, simulate bool
	cmd := &cobra.Command{
		Use:   "match <text>",
		Short: "Show which clips a command would play",
		Long: `Resolve a free-text command the way the command bar does.

Keywords are tried first. Without a keyword match the hosted model is asked
for suggestions, unless --no-model is set.

Examples:
  marionette match "walk then jump"
  marionette match "chạy rồi nhảy" --simulate
  marionette match "greet the guest" --no-model`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched := anim.NewManualScheduler()
			a, err := newApp(flags, sched, flags.console(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			result, fallback, err := a.ctl.Command(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if fallback != nil {
				if noModel {
					fmt.Fprintln(w, "no keyword match")
					return nil
				}
				names, ferr := fallback(cmd.Context())
				result = a.ctl.ApplyProposals(names, ferr)
				if result.Err != nil {
					return fmt.Errorf("model suggestion: %w", result.Err)
				}
			}

			notice, _ := ui.OutcomeNotice(result)
			fmt.Fprintln(w, notice)
			if simulate && result.Applied() {
				simulatePlayback(w, a.ctl, sched)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noModel, "no-model", false, "only try keywords")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "print the playback timeline")
	return cmd
}

// simulatePlayback runs the scheduler to completion and prints every state
// the avatar passes through.
func simulatePlayback(w io.Writer, ctl *controller.Controller, sched *anim.ManualScheduler) {
	var elapsed time.Duration
	printState(w, elapsed, ctl.State())
	for i := 0; i < maxSimulatedSteps; i++ {
		d, ok := sched.NextDue()
		if !ok {
			return
		}
		sched.Advance(d)
		elapsed += d
		printState(w, elapsed, ctl.State())
	}
}

func printState(w io.Writer, at time.Duration, st anim.State) {
	name := catalog.DisplayName(st.Clip)
	if name == "" {
		name = "-"
	}
	line := fmt.Sprintf("  %6.2fs  %-8s %s (%s)", at.Seconds(), st.Phase, name, st.Mode())
	if p := ui.QueueProgress(st); p != "" {
		line += " " + p
	}
	fmt.Fprintln(w, line)
}

func newAskCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message to the receptionist",
		Long: `Send a single chat message to the assistant and print its reply
together with the animations it chose.

Requires an API key (OPENROUTER_API_KEY or llm.api_key in the config).

Examples:
  marionette ask "hi, I have a reservation"
  marionette ask "can you show me where the restaurant is?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, anim.NewManualScheduler(), flags.console(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			reply, result, err := a.ctl.Chat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, reply.Message)
			if reply.Err != nil {
				return fmt.Errorf("assistant: %w", reply.Err)
			}
			if result.Applied() {
				fmt.Fprintf(w, "→ %s\n", ui.ClipList(result.Clips))
			}
			return nil
		},
	}
	return cmd
}
