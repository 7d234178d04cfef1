package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase indexes an ebook into a buyer's library. One row is written per
// recorded sale so the buyer can later retrieve the title.
type Purchase struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;index"`
	EbookID   uuid.UUID `gorm:"column:ebook_id;type:uuid;not null"`
	SaleID    uuid.UUID `gorm:"column:sale_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
