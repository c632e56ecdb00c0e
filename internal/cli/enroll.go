package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/binder/internal/model"
)

// EnrollResult is the payload of the enroll command.
type EnrollResult struct {
	Course   model.CourseID `json:"course"`
	User     model.UserID   `json:"user"`
	Created  bool           `json:"created"`
	Students []model.User   `json:"students"`
}

// NewEnrollCommand creates the enroll command.
func NewEnrollCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll <course-id> <user-id>",
		Short: "Enroll a user in a course",
		Long: `Enroll a user in a course. The enrollment is stored in both the courses
and the users binding files. Prints the course's students afterwards.

Example:
  binder enroll c1 u1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			course, user := model.CourseID(args[0]), model.UserID(args[1])
			return withSession(rootOpts, cmd, func(s *session) error {
				created, err := s.roster.Enroll(course, user)
				if err != nil {
					return failure("failed to enroll", err)
				}
				students, err := s.roster.StudentsInCourse(course)
				if err != nil {
					return failure("failed to list students", err)
				}
				if students == nil {
					students = []model.User{}
				}

				status := "enrolled"
				if !created {
					status = "already enrolled"
				}
				lines := []string{fmt.Sprintf("%s %s in %s", status, user, course)}
				for _, u := range students {
					lines = append(lines, "  "+describe(u))
				}
				return s.out.Success(EnrollResult{Course: course, User: user, Created: created, Students: students}, lines...)
			})
		},
	}
	return cmd
}
