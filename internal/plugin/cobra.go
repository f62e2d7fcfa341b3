package plugin

import (
	"strings"

	"github.com/spf13/cobra"
)

// CobraCommands turns the declared command tree into cobra commands. A leaf
// triggers its lifecycle events in order and stops at the first error.
func (p *Plugin) CobraCommands() []*cobra.Command {
	out := make([]*cobra.Command, 0, len(p.commands))
	for _, c := range p.commands {
		out = append(out, p.cobraCommand(c, nil))
	}
	return out
}

func (p *Plugin) cobraCommand(c Command, parents []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   c.Name,
		Short: c.Usage,
		Args:  cobra.NoArgs,
	}
	for _, o := range c.Options {
		if o.Bool {
			cmd.Flags().BoolP(o.Name, o.Shortcut, false, o.Usage)
		} else {
			cmd.Flags().StringP(o.Name, o.Shortcut, "", o.Usage)
		}
		if o.Required {
			_ = cmd.MarkFlagRequired(o.Name)
		}
	}

	path := append(append([]string(nil), parents...), c.Name)
	if len(c.LifecycleEvents) > 0 {
		cmd.RunE = func(cmd *cobra.Command, _ []string) error {
			raw := map[string]string{}
			for _, o := range c.Options {
				if f := cmd.Flags().Lookup(o.Name); f != nil && f.Changed {
					raw[o.Name] = f.Value.String()
				}
			}
			opts, err := ParseOptions(p.commands, raw)
			if err != nil {
				return err
			}
			for _, event := range c.LifecycleEvents {
				name := strings.Join(append(append([]string(nil), path...), event), ":")
				if err := p.Trigger(cmd.Context(), name, opts); err != nil {
					return err
				}
			}
			return nil
		}
	}

	for _, sub := range c.Commands {
		cmd.AddCommand(p.cobraCommand(sub, path))
	}
	return cmd
}
