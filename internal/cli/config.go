package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCommand creates the preferences management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or reset the remembered render parameters",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configResetCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the remembered parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.prefsStore()
			if err != nil {
				return err
			}
			p, err := store.Load()
			if err != nil {
				return err
			}
			req, err := p.Request()
			if err != nil {
				return err
			}

			source := p.Source
			if source == "" {
				source = "(none)"
			}
			track := p.TrackMask
			if track == "" {
				track = "(none)"
			}
			printKeyValue(c.Out, "source", source)
			printKeyValue(c.Out, "multiplier", fmt.Sprintf("%g", p.Multiplier))
			printKeyValue(c.Out, "bounds", fmt.Sprintf("%g – %g", p.LowerBound, p.UpperBound))
			printKeyValue(c.Out, "track mask", track)
			printTable(c.Out, []string{"Class", "Color"}, [][]string{
				{"red", p.Colors.Red},
				{"green", p.Colors.Green},
				{"blue", p.Colors.Blue},
				{"black", p.Colors.Black},
			})
			printDetail(c.Out, "File: %s", store.Path())
			printNextStep(c.Out, "Equivalent flags", describeRequest(req))
			return nil
		},
	}
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the preferences file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.prefsStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, store.Path())
			return nil
		},
	}
}

func (c *CLI) configResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the remembered parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.prefsStore()
			if err != nil {
				return err
			}
			if err := store.Reset(); err != nil {
				return err
			}
			printSuccess(c.Out, "Preferences reset")
			printDetail(c.Out, "File: %s", store.Path())
			return nil
		},
	}
}
