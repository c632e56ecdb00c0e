package persist

import (
	"errors"

	"github.com/roach88/binder/internal/model"
)

// PathStats describes one cached store path.
type PathStats struct {
	Kind    model.Kind `json:"kind"`
	Path    string     `json:"path"`
	Records int        `json:"records"`
}

// Stats lists every cached path with its record count, grouped by kind in
// model.Kinds order.
func (c *Coordinator) Stats() []PathStats {
	var out []PathStats
	add := func(kind model.Kind, paths []string, size func(string) (int, bool)) {
		for _, p := range paths {
			if n, ok := size(p); ok {
				out = append(out, PathStats{Kind: kind, Path: p, Records: n})
			}
		}
	}
	add(model.KindAnswer, c.answers.paths(), c.answers.size)
	add(model.KindBinding, c.bindings.paths(), c.bindings.size)
	add(model.KindCourse, c.courses.paths(), c.courses.size)
	add(model.KindQuestion, c.questions.paths(), c.questions.size)
	add(model.KindTicket, c.tickets.paths(), c.tickets.size)
	add(model.KindUser, c.users.paths(), c.users.size)
	return out
}

// Flush saves every cached path holding records that were cached but not
// yet written, including paths whose earlier save failed and was
// swallowed. Paths already in sync with the store are not rewritten.
// Storage failures follow the usual policy; the returned error joins the
// ones that are surfaced.
func (c *Coordinator) Flush() error {
	var errs []error
	flush := func(paths []string, save func(string) error) {
		for _, p := range paths {
			if err := save(p); err != nil {
				errs = append(errs, err)
			}
		}
	}
	flush(c.answers.paths(), c.answers.flush)
	flush(c.bindings.paths(), c.bindings.flush)
	flush(c.courses.paths(), c.courses.flush)
	flush(c.questions.paths(), c.questions.flush)
	flush(c.tickets.paths(), c.tickets.flush)
	flush(c.users.paths(), c.users.flush)
	return errors.Join(errs...)
}
