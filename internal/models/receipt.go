// internal/models/receipt.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Receipt records a rendered order receipt and, when archiving is
// enabled, where its PDF copy lives.
type Receipt struct {
	BaseModel
	OrderID    uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;uniqueIndex"`
	Number     string     `json:"number" gorm:"uniqueIndex;not null"`
	PDFKey     string     `json:"pdf_key,omitempty"`
	ArchiveURL string     `json:"archive_url,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
