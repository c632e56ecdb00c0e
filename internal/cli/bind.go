package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/binder/internal/model"
)

// BindOptions holds flags for the bind command.
type BindOptions struct {
	*RootOptions
	Path string
}

// BindResult is the payload of the bind command.
type BindResult struct {
	Binding model.Binding `json:"binding"`
	Created bool          `json:"created"`
}

// NewBindCommand creates the bind command.
func NewBindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bind <src-kind:id> <dest-kind:id>",
		Short: "Relate two records",
		Long: `Store a binding from one record to another and persist the binding file.

Binding an edge that is already stored changes nothing.

Example:
  binder bind course:c1 user:u1 --path /courses.bindings`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseRef(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid source", err)
			}
			dest, err := parseRef(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid destination", err)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				b, created, err := s.coord.Bind(opts.Path, src.String(), dest.String(), src.Kind(), dest.Kind())
				if err != nil {
					return failure("failed to bind", err)
				}
				line := describeBinding(b)
				if !created {
					line += " (already bound)"
				}
				return s.out.Success(BindResult{Binding: b, Created: created}, line)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "binding file (default: the bindings path)")
	return cmd
}
