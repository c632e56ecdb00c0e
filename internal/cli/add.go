package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/roster"
)

// AddOptions holds the flags shared by the add subcommands.
type AddOptions struct {
	*RootOptions
	ID   string
	Path string
}

// NewAddCommand creates the add command and its per-kind subcommands.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a record",
		Long: `Store a record in its collection.

The collection at --path (default: the kind's configured path) is loaded
first, so existing records are kept. An empty --id generates one.

Example:
  binder add user --id u1 --name Ann --password secret
  binder add course --id c1 --name Algebra --teacher u3 --year 2024
  binder add question --id q1 --text "2+2?" --answer b --choice a=3 --choice b=4`,
	}

	cmd.AddCommand(newAddUserCommand(rootOpts))
	cmd.AddCommand(newAddCourseCommand(rootOpts))
	cmd.AddCommand(newAddTicketCommand(rootOpts))
	cmd.AddCommand(newAddQuestionCommand(rootOpts))
	cmd.AddCommand(newAddAnswerCommand(rootOpts))
	return cmd
}

func addFlags(cmd *cobra.Command, opts *AddOptions) {
	cmd.Flags().StringVar(&opts.ID, "id", "", "record id (generated when empty)")
	cmd.Flags().StringVar(&opts.Path, "path", "", "store path (default: the kind's path)")
}

// storeRecord loads path, caches the record and writes the collection back.
func storeRecord[V model.Entity](s *session, path string, v V, load func(string) error, cache func(string, V) error, save func(string) error) error {
	if err := load(path); err != nil {
		return failure("failed to load collection", err)
	}
	if err := cache(path, v); err != nil {
		return failure("failed to cache record", err)
	}
	if err := save(path); err != nil {
		return failure("failed to save collection", err)
	}
	s.logger.Info("record stored", "kind", string(v.EntityID().Kind()), "id", v.EntityID().String())
	return s.out.Success(v, describe(v))
}

func newAddUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}
	var name, password, typ string

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Store a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := model.NewUser(model.UserID(opts.ID), name, password, model.UserType(strings.ToUpper(typ)))
			if err != nil {
				return failure("invalid user", err)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				return storeRecord(s, opts.Path, u,
					func(p string) error { _, err := s.coord.Users(p); return err },
					s.coord.CacheUser, s.coord.SaveUsers)
			})
		},
	}
	addFlags(cmd, opts)
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&typ, "type", string(model.UserTypeStudent), "user type (student|admin)")
	return cmd
}

func newAddCourseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}
	var name, teacher string
	var year int

	cmd := &cobra.Command{
		Use:   "course",
		Short: "Store a course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := model.NewCourse(model.CourseID(opts.ID), name, model.UserID(teacher), year)
			if err != nil {
				return failure("invalid course", err)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				return storeRecord(s, opts.Path, c,
					func(p string) error { _, err := s.coord.Courses(p); return err },
					s.coord.CacheCourse, s.coord.SaveCourses)
			})
		},
	}
	addFlags(cmd, opts)
	cmd.Flags().StringVar(&name, "name", "", "course name")
	cmd.Flags().StringVar(&teacher, "teacher", "", "teacher user id")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "academic year")
	return cmd
}

func newAddTicketCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}
	var owner, date, title string

	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Store a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if date != "" {
				parsed, err := time.Parse(time.RFC3339, date)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --date (want RFC 3339)", err)
				}
				when = parsed
			}
			tk, err := model.NewTicket(model.TicketID(opts.ID), model.UserID(owner), when, title)
			if err != nil {
				return failure("invalid ticket", err)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				return storeRecord(s, opts.Path, tk,
					func(p string) error { _, err := s.coord.Tickets(p); return err },
					s.coord.CacheTicket, s.coord.SaveTickets)
			})
		},
	}
	addFlags(cmd, opts)
	cmd.Flags().StringVar(&owner, "owner", "", "owner user id")
	cmd.Flags().StringVar(&date, "date", "", "ticket date, RFC 3339 (default: now)")
	cmd.Flags().StringVar(&title, "title", "", "ticket title")
	return cmd
}

func newAddQuestionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}
	var text, answer string
	var choices []string

	cmd := &cobra.Command{
		Use:   "question",
		Short: "Store a question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]model.Choice, 0, len(choices))
			for _, c := range choices {
				name, desc, _ := strings.Cut(c, "=")
				parsed = append(parsed, model.Choice{Name: name, Description: desc})
			}
			q, err := model.NewQuestion(model.QuestionID(opts.ID), text, answer, parsed)
			if err != nil {
				return failure("invalid question", err)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				return storeRecord(s, opts.Path, q,
					func(p string) error { _, err := s.coord.Questions(p); return err },
					s.coord.CacheQuestion, s.coord.SaveQuestions)
			})
		},
	}
	addFlags(cmd, opts)
	cmd.Flags().StringVar(&text, "text", "", "question text")
	cmd.Flags().StringVar(&answer, "answer", "", "name of the correct choice")
	cmd.Flags().StringArrayVar(&choices, "choice", nil, "choice as name=description (repeatable, ordered)")
	return cmd
}

func newAddAnswerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}
	var sub roster.Submission
	var question, user, course, ticket string

	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Submit an answer to a question",
		Long: `Submit an answer to a question.

The answer is stored at the answers path and bound to its question in the
question's shard under the questions binding directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub.ID = model.AnswerID(opts.ID)
			sub.Question = model.QuestionID(question)
			sub.User = model.UserID(user)
			sub.Course = model.CourseID(course)
			sub.Ticket = model.TicketID(ticket)
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				a, err := s.roster.SubmitAnswer(sub)
				if err != nil {
					return failure("failed to submit answer", err)
				}
				return s.out.Success(a, describe(a))
			})
		},
	}
	cmd.Flags().StringVar(&opts.ID, "id", "", "answer id (generated when empty)")
	cmd.Flags().StringVar(&sub.Value, "value", "", "submitted value")
	cmd.Flags().StringVar(&question, "question", "", "question id (required)")
	cmd.Flags().StringVar(&user, "user", "", "submitting user id")
	cmd.Flags().StringVar(&course, "course", "", "course id")
	cmd.Flags().StringVar(&ticket, "ticket", "", "ticket id")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

// describe renders a record as one line of text output.
func describe(e model.Entity) string {
	switch v := e.(type) {
	case model.User:
		return fmt.Sprintf("user %s %q %s", v.ID, v.Name, v.Type)
	case model.Course:
		return fmt.Sprintf("course %s %q teacher=%s year=%d", v.ID, v.Name, v.Teacher, v.Year)
	case model.Ticket:
		return fmt.Sprintf("ticket %s %q owner=%s date=%s", v.ID, v.Title, v.Owner, v.Date.Format(time.RFC3339))
	case model.Question:
		return fmt.Sprintf("question %s %q choices=%s", v.ID, v.Text, strings.Join(v.ChoiceNames(), ","))
	case model.Answer:
		return fmt.Sprintf("answer %s question=%s user=%s value=%q", v.ID, v.Question, v.User, v.Value)
	case model.Binding:
		return describeBinding(v)
	}
	return fmt.Sprintf("%s %s", e.EntityID().Kind(), e.EntityID())
}

func describeBinding(b model.Binding) string {
	return fmt.Sprintf("binding %s %s:%s -> %s:%s", b.ID, b.SrcKind, b.Src, b.DestKind, b.Dest)
}
