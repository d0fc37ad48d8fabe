package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Loan statuses accepted by the list filter. Overdue is a subset of active.
const (
	LoanStatusActive   = "active"
	LoanStatusReturned = "returned"
	LoanStatusOverdue  = "overdue"
)

// Loan records a Copy being checked out by a User, open until returned.
type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time  `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	UserID     int        `bun:",nullzero" json:"user_id"`
	CopyID     int        `bun:",nullzero" json:"copy_id"`
	LoanedAt   time.Time  `json:"loaned_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at"`

	// Relations
	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Copy *Copy `bun:"rel:belongs-to,join:copy_id=id" json:"copy,omitempty"`
}

// Returned reports whether the loan is closed. A nil ReturnedAt means the
// loan is still open.
func (l *Loan) Returned() bool {
	return l.ReturnedAt != nil
}

// OverdueAt reports whether the loan is overdue as of the given time: open
// and past its due date. Dates are compared at day resolution, so a loan due
// today is not overdue yet.
func (l *Loan) OverdueAt(now time.Time) bool {
	if l.ReturnedAt != nil {
		return false
	}
	due := time.Date(l.DueDate.Year(), l.DueDate.Month(), l.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}

// Overdue reports whether the loan is overdue right now. It's derived on
// every read and never stored.
func (l *Loan) Overdue() bool {
	return l.OverdueAt(time.Now())
}
