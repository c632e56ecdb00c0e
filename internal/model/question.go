package model

// Choice is one selectable option of a question.
type Choice struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Question is a multiple-choice question with its answer key.
// Choices keep their order.
type Question struct {
	ID      QuestionID `json:"id"`
	Text    string     `json:"text"`
	Answer  string     `json:"answer"`
	Choices []Choice   `json:"choices"`
}

// NewQuestion creates a question. An empty id is replaced by a fresh one.
// The choices slice is copied. The text and choice descriptions are NFC
// normalized; choice names and the answer key are kept as given.
func NewQuestion(id QuestionID, text, answer string, choices []Choice) (Question, error) {
	q := Question{
		ID:      QuestionID(newIDValue(string(id))),
		Text:    normalizeText(text),
		Answer:  answer,
		Choices: make([]Choice, len(choices)),
	}
	for i, c := range choices {
		q.Choices[i] = Choice{Name: c.Name, Description: normalizeText(c.Description)}
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (q Question) EntityID() ID { return q.ID }

// Validate checks the record invariants.
func (q Question) Validate() error {
	return requireID(q.ID)
}

// ChoiceNames returns the choice names in order.
func (q Question) ChoiceNames() []string {
	names := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		names[i] = c.Name
	}
	return names
}

// IsCorrect reports whether value matches the answer key.
func (q Question) IsCorrect(value string) bool {
	return q.Answer == value
}
