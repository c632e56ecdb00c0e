package cli

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/binder/internal/model"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Path string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List the records of a collection",
		Long: `List the records stored at a path, ordered by id.

Kinds: answer, binding, course, question, ticket, user.

Example:
  binder list user
  binder list binding --path /courses.bindings`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid kind", err)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				records, err := listRecords(s, kind, opts.Path)
				if err != nil {
					return failure("failed to list "+kind.String(), err)
				}
				lines := make([]string, len(records))
				for i, r := range records {
					lines[i] = describe(r)
				}
				if len(lines) == 0 {
					lines = []string{"(none)"}
				}
				return s.out.Success(records, lines...)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "store path (default: the kind's path)")
	return cmd
}

// listRecords returns the records of kind at path ordered by id.
func listRecords(s *session, kind model.Kind, path string) ([]model.Entity, error) {
	switch kind {
	case model.KindAnswer:
		m, err := s.coord.Answers(path)
		return sortedValues(m), err
	case model.KindCourse:
		m, err := s.coord.Courses(path)
		return sortedValues(m), err
	case model.KindQuestion:
		m, err := s.coord.Questions(path)
		return sortedValues(m), err
	case model.KindTicket:
		m, err := s.coord.Tickets(path)
		return sortedValues(m), err
	case model.KindUser:
		m, err := s.coord.Users(path)
		return sortedValues(m), err
	case model.KindBinding:
		idx, err := s.coord.Bindings(path)
		if err != nil {
			return nil, err
		}
		out := []model.Entity{}
		for _, b := range idx.Values() {
			out = append(out, b)
		}
		return out, nil
	}
	return nil, model.ErrUnknownKind
}

func sortedValues[K ~string, V model.Entity](m map[K]V) []model.Entity {
	out := make([]model.Entity, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out
}
