package persist

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/store"
)

// BindingsSuffix is appended to a kind's path to name its binding file.
const BindingsSuffix = ".bindings"

// Paths holds the default store path of every kind.
type Paths struct {
	Answers   string `yaml:"answers"`
	Courses   string `yaml:"courses"`
	Questions string `yaml:"questions"`
	Tickets   string `yaml:"tickets"`
	Users     string `yaml:"users"`
	Bindings  string `yaml:"bindings"`
}

// DefaultPaths returns the standard layout.
func DefaultPaths() Paths {
	return Paths{
		Answers:   "/answers",
		Courses:   "/courses",
		Questions: "/questions",
		Tickets:   "/tickets",
		Users:     "/users",
		Bindings:  "/bindings",
	}
}

// WithDefaults fills empty entries from DefaultPaths.
func (p Paths) WithDefaults() Paths {
	d := DefaultPaths()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&p.Answers, d.Answers)
	fill(&p.Courses, d.Courses)
	fill(&p.Questions, d.Questions)
	fill(&p.Tickets, d.Tickets)
	fill(&p.Users, d.Users)
	fill(&p.Bindings, d.Bindings)
	return p
}

// Validate checks that every path is a valid store path.
func (p Paths) Validate() error {
	for _, k := range model.Kinds {
		if _, err := store.ResolvePath(p.For(k)); err != nil {
			return fmt.Errorf("%s path: %w", k, err)
		}
	}
	return nil
}

// For returns the default path of kind k.
func (p Paths) For(k model.Kind) string {
	switch k {
	case model.KindAnswer:
		return p.Answers
	case model.KindBinding:
		return p.Bindings
	case model.KindCourse:
		return p.Courses
	case model.KindQuestion:
		return p.Questions
	case model.KindTicket:
		return p.Tickets
	case model.KindUser:
		return p.Users
	}
	return ""
}

// BindingsFor returns the companion binding file of kind k, e.g.
// "/courses.bindings".
func (p Paths) BindingsFor(k model.Kind) string {
	if k == model.KindBinding {
		return p.Bindings
	}
	return p.For(k) + BindingsSuffix
}

// QuestionAnswers returns the shard holding the answer bindings of a
// question: "<questions>.bindings/qb<hash>".
//
// The hash is the 32-bit FNV-1a of the question id, so the mapping is
// stable across processes and platforms. Different questions may share a
// shard; the bindings inside still name their source question.
func (p Paths) QuestionAnswers(id model.QuestionID) string {
	return p.Questions + BindingsSuffix + "/qb" + strconv.FormatUint(uint64(ShardHash(string(id))), 10)
}

// ShardHash is the hash used to pick answer shards.
func ShardHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
