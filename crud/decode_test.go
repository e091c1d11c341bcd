package crud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	var rec order
	err := DecodeRecord(map[string]any{
		"reference":     "ord-1",
		"amount":        float64(12.5),
		"creation_date": "2024-03-01T10:00:00Z",
		"enabled_flag":  true,
	}, &rec)
	require.NoError(t, err)

	assert.Equal(t, "ord-1", rec.Reference)
	assert.Equal(t, 12.5, rec.Amount)
	assert.True(t, rec.EnabledFlag)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), rec.CreationDate)
}

func TestDecodeRecordWeakTyping(t *testing.T) {
	// JSON numbers arrive as float64 even for integer columns
	var rec order
	err := DecodeRecord(map[string]any{"id": float64(7)}, &rec)
	require.NoError(t, err)
	assert.Equal(t, uint(7), rec.ID)
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	var rec order
	err := DecodeRecord(map[string]any{"amount": "not-a-number"}, &rec)
	assert.ErrorIs(t, err, ErrValidation)
}

type auditBase struct {
	ID           uint      `json:"id"`
	CreationDate time.Time `json:"creation_date"`
	CreatedBy    string    `json:"created_by"`
	UpdatedBy    string    `json:"updated_by"`
	EnabledFlag  bool      `json:"enabled_flag"`
	TraceID      string    `json:"trace_id"`
}

type spud struct {
	auditBase
	Color string `json:"color"`
}

func TestDecodeRecordEmbeddedFields(t *testing.T) {
	// the audit columns live in an embedded base struct on every real
	// model; they must decode from flat wire keys, not under "auditBase"
	var rec spud
	err := DecodeRecord(map[string]any{
		"id":           float64(7),
		"color":        "yellow",
		"created_by":   "u-1",
		"updated_by":   "u-1",
		"trace_id":     "t-1",
		"enabled_flag": true,
	}, &rec)
	require.NoError(t, err)

	assert.Equal(t, "yellow", rec.Color)
	assert.Equal(t, uint(7), rec.ID)
	assert.Equal(t, "u-1", rec.CreatedBy)
	assert.Equal(t, "u-1", rec.UpdatedBy)
	assert.Equal(t, "t-1", rec.TraceID)
	assert.True(t, rec.EnabledFlag)
}
