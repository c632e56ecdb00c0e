package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/binder/internal/model"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per collection",
		Long: `Load the default path of every kind and print how many records each holds.
With --all the companion binding files of every kind are loaded as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				if err := loadDefaults(s, all); err != nil {
					return failure("failed to load collections", err)
				}
				stats := s.coord.Stats()
				lines := make([]string, len(stats))
				for i, st := range stats {
					lines[i] = fmt.Sprintf("%-8s %-24s %d", st.Kind, st.Path, st.Records)
				}
				return s.out.Success(stats, lines...)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "also load the binding file of every kind")
	return cmd
}

func loadDefaults(s *session, withBindings bool) error {
	loads := []func() error{
		func() error { _, err := s.coord.Answers(""); return err },
		func() error { _, err := s.coord.Bindings(""); return err },
		func() error { _, err := s.coord.Courses(""); return err },
		func() error { _, err := s.coord.Questions(""); return err },
		func() error { _, err := s.coord.Tickets(""); return err },
		func() error { _, err := s.coord.Users(""); return err },
	}
	for _, load := range loads {
		if err := load(); err != nil {
			return err
		}
	}
	if !withBindings {
		return nil
	}
	paths := s.coord.Paths()
	for _, k := range model.Kinds {
		if k == model.KindBinding {
			continue
		}
		if _, err := s.coord.Bindings(paths.BindingsFor(k)); err != nil {
			return err
		}
	}
	return nil
}
