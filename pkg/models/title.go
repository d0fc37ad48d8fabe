package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Title is a bibliographic work, distinct from the physical copies of it.
type Title struct {
	bun.BaseModel `bun:"table:titles,alias:t"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	Author    string    `bun:",nullzero" json:"author"`
	CoAuthor  *string   `json:"co_author"`

	// Relations
	Copies []*Copy `bun:"rel:has-many,join:id=title_id" json:"copies,omitempty"`
}
