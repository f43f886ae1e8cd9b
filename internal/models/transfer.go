package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transfer is one upload batch addressed by a short access code.
type Transfer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string    `json:"code" gorm:"size:6;uniqueIndex;not null"`
	FileCount int       `json:"file_count" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate assigns the primary key so inserts behave the same on postgres and sqlite.
func (t *Transfer) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the transfer is past its expiry at now.
func (t *Transfer) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
