package model

import "time"

// Answer is a value a user submitted for a question while sitting a ticket
// of a course.
type Answer struct {
	ID        AnswerID   `json:"id"`
	Value     string     `json:"value"`
	Submitted time.Time  `json:"submitted"`
	Question  QuestionID `json:"question"`
	User      UserID     `json:"user"`
	Course    CourseID   `json:"course"`
	Ticket    TicketID   `json:"ticket"`
}

// NewAnswer creates an answer. An empty id is replaced by a fresh one.
func NewAnswer(id AnswerID, value string, submitted time.Time, question QuestionID, user UserID, course CourseID, ticket TicketID) (Answer, error) {
	a := Answer{
		ID:        AnswerID(newIDValue(string(id))),
		Value:     value,
		Submitted: submitted,
		Question:  question,
		User:      user,
		Course:    course,
		Ticket:    ticket,
	}.Normalized()
	if err := a.Validate(); err != nil {
		return Answer{}, err
	}
	return a, nil
}

func (a Answer) EntityID() ID { return a.ID }

// Normalized returns a with its submission time in the form it has after a
// store round trip: UTC, without a monotonic reading.
func (a Answer) Normalized() Answer {
	a.Submitted = normalizeTime(a.Submitted)
	return a
}

// Validate checks the record invariants.
func (a Answer) Validate() error {
	if err := requireID(a.ID); err != nil {
		return err
	}
	return requireID(a.Question)
}
