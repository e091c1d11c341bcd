package models

import "time"

// Base carries the audit columns shared by every entity. The engine stamps
// created_by/updated_by/trace_id from the caller context; creation and
// updation dates belong to the storage layer, and enabled_flag is the
// soft-delete marker (false means deleted). None of them are
// client-settable.
type Base struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreationDate time.Time `gorm:"autoCreateTime" json:"creation_date"`
	CreatedBy    string    `gorm:"type:varchar(64);index" json:"created_by"`
	UpdationDate time.Time `gorm:"autoUpdateTime" json:"updation_date"`
	UpdatedBy    string    `gorm:"type:varchar(64)" json:"updated_by"`
	EnabledFlag  bool      `gorm:"not null;default:true" json:"enabled_flag"`
	TraceID      string    `gorm:"type:varchar(255)" json:"trace_id"`
}
