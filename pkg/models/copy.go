package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Copy is one physical instance of a Title, individually trackable and
// loanable. Available must equal "no open loan references this copy" after
// every mutation.
type Copy struct {
	bun.BaseModel `bun:"table:copies,alias:c"`

	ID              int       `bun:",pk,nullzero" json:"id"`
	CreatedAt       time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	TitleID         int       `bun:",nullzero" json:"title_id"`
	AcquisitionDate time.Time `json:"acquisition_date"`
	// QRCode is a base64 PNG encoding the copy identifier. It's large, so it's
	// left out of JSON; clients fetch it through the qrcode endpoint.
	QRCode    string `json:"-"`
	Available bool   `json:"available"`

	// Relations
	Title *Title  `bun:"rel:belongs-to,join:title_id=id" json:"title,omitempty"`
	Loans []*Loan `bun:"rel:has-many,join:id=copy_id" json:"loans,omitempty"`
}
