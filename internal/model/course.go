package model

// Course is taught by one user in a given year.
type Course struct {
	ID      CourseID `json:"id"`
	Name    string   `json:"name"`
	Teacher UserID   `json:"teacher"`
	Year    int      `json:"year"`
}

// NewCourse creates a course. An empty id is replaced by a fresh one. The
// name is NFC normalized.
func NewCourse(id CourseID, name string, teacher UserID, year int) (Course, error) {
	c := Course{
		ID:      CourseID(newIDValue(string(id))),
		Name:    normalizeText(name),
		Teacher: teacher,
		Year:    year,
	}
	if err := c.Validate(); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (c Course) EntityID() ID { return c.ID }

// Validate checks the record invariants.
func (c Course) Validate() error {
	if err := requireID(c.ID); err != nil {
		return err
	}
	return requireName(KindCourse, c.Name)
}
