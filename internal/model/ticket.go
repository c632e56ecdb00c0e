package model

import "time"

// Ticket is a dated exam sheet owned by a user.
type Ticket struct {
	ID    TicketID  `json:"id"`
	Owner UserID    `json:"owner"`
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
}

// NewTicket creates a ticket. An empty id is replaced by a fresh one. The
// title is NFC normalized and the date stored in UTC.
func NewTicket(id TicketID, owner UserID, date time.Time, title string) (Ticket, error) {
	t := Ticket{
		ID:    TicketID(newIDValue(string(id))),
		Owner: owner,
		Date:  date,
		Title: normalizeText(title),
	}.Normalized()
	if err := t.Validate(); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

func (t Ticket) EntityID() ID { return t.ID }

// Normalized returns t with its date in the form it has after a store
// round trip: UTC, without a monotonic reading.
func (t Ticket) Normalized() Ticket {
	t.Date = normalizeTime(t.Date)
	return t
}

// Validate checks the record invariants.
func (t Ticket) Validate() error {
	return requireID(t.ID)
}
