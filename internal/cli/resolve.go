package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/binder/internal/binding"
	"github.com/roach88/binder/internal/model"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Path     string
	Source   string
	DestKind string
	Raw      bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Follow bindings to the records they point at",
		Long: `Select the bindings of a binding file by source and destination kind
and print the destination records. Destinations that are not stored are
left out. With --raw the matching bindings themselves are printed.

Example:
  binder resolve --path /courses.bindings --src course:c1 --dest-kind user`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			preds, err := opts.predicates()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid filter", err)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				if opts.Raw {
					return resolveBindings(s, opts.Path, preds)
				}
				seq, err := s.coord.Resolve(opts.Path, preds...)
				if err != nil {
					return failure("failed to resolve", err)
				}
				records := []model.Entity{}
				var lines []string
				for e := range seq {
					records = append(records, e)
					lines = append(lines, describe(e))
				}
				s.out.VerboseLog("%d record(s) resolved", len(records))
				if len(lines) == 0 {
					lines = []string{"(none)"}
				}
				return s.out.Success(records, lines...)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "binding file (default: the bindings path)")
	cmd.Flags().StringVar(&opts.Source, "src", "", "only bindings from this record (kind:id)")
	cmd.Flags().StringVar(&opts.DestKind, "dest-kind", "", "only bindings to records of this kind")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print the bindings instead of their destinations")
	return cmd
}

func (o *ResolveOptions) predicates() ([]binding.Predicate, error) {
	var preds []binding.Predicate
	if o.Source != "" {
		src, err := parseRef(o.Source)
		if err != nil {
			return nil, err
		}
		preds = append(preds, binding.SourceIs(src))
	}
	if o.DestKind != "" {
		k, err := model.ParseKind(o.DestKind)
		if err != nil {
			return nil, err
		}
		preds = append(preds, binding.DestKindIs(k))
	}
	return preds, nil
}

func resolveBindings(s *session, path string, preds []binding.Predicate) error {
	seq, err := s.coord.Select(path, preds...)
	if err != nil {
		return failure("failed to select bindings", err)
	}
	bindings := []model.Binding{}
	var lines []string
	for b := range seq {
		bindings = append(bindings, b)
		lines = append(lines, describeBinding(b))
	}
	if len(lines) == 0 {
		lines = []string{"(none)"}
	}
	return s.out.Success(bindings, lines...)
}
