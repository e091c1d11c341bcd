package models

// Potato is a flat document entity served from the Redis-backed store
type Potato struct {
	Base
	Color     string  `gorm:"type:varchar(100)" json:"color" binding:"required"`
	Mass      float64 `json:"mass"`
	Thickness float64 `json:"thickness"`
	Type      string  `gorm:"type:varchar(100)" json:"type"`
}
