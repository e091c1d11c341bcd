package crud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// order and customer form a mutually referential pair so relation shaping
// and cycle handling can be exercised without a database.
type order struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Reference    string    `json:"reference" binding:"required"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	CreationDate time.Time `json:"creation_date"`
	CreatedBy    string    `json:"created_by"`
	UpdationDate time.Time `json:"updation_date"`
	UpdatedBy    string    `json:"updated_by"`
	EnabledFlag  bool      `json:"enabled_flag"`
	TraceID      string    `json:"trace_id"`
	CustomerID   *uint     `json:"customer_id"`
	Customer     *customer `json:"customer"`
	Tags         []*tag    `json:"tags" gorm:"many2many:order_tags;"`
	TagsRefIDs   []uint    `json:"tags_refids,omitempty" gorm:"-"`
}

type customer struct {
	ID     uint     `json:"id" gorm:"primaryKey"`
	Name   string   `json:"name" binding:"required"`
	Orders []*order `json:"orders"`
}

type tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Label string `json:"label"`
}

func TestDescribeOrder(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	assert.Equal(t, "order", desc.Name)
	assert.Equal(t, "orders", desc.Table)
	assert.Equal(t, "id", desc.PrimaryKey)

	ref, ok := desc.Field("reference")
	require.True(t, ok)
	assert.True(t, ref.Required)
	assert.Equal(t, "reference", ref.Column)

	// audit fields are plain declared fields
	_, ok = desc.Field("creation_date")
	assert.True(t, ok)

	// the refids input is virtual, not a field
	_, ok = desc.Field("tags_refids")
	assert.False(t, ok)

	tags, ok := desc.Relation("tags")
	require.True(t, ok)
	assert.True(t, tags.Many)
	assert.Equal(t, "tags_refids", tags.RefIDsKey)

	cust, ok := desc.Relation("customer")
	require.True(t, ok)
	assert.False(t, cust.Many)
}

func TestColumnRejectsUnknownField(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	_, err = desc.Column("reference; DROP TABLE orders")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestFilterPayloadStampsAudit(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	caller := Caller{UserID: "u-1", TraceID: "t-1"}
	payload := map[string]any{
		"id":            42,
		"reference":     "ord-1",
		"amount":        12.5,
		"status":        nil,
		"creation_date": "2024-01-01T00:00:00Z",
		"enabled_flag":  false,
		"bogus":         "x",
	}

	fields := desc.FilterPayload(payload, caller, true, false)

	assert.Equal(t, "ord-1", fields["reference"])
	assert.Equal(t, 12.5, fields["amount"])
	assert.Equal(t, "u-1", fields[FieldCreatedBy])
	assert.Equal(t, "u-1", fields[FieldUpdatedBy])
	assert.Equal(t, "t-1", fields[FieldTraceID])

	assert.NotContains(t, fields, "id")
	assert.NotContains(t, fields, "status")
	assert.NotContains(t, fields, "bogus")
	assert.NotContains(t, fields, FieldCreationDate)
	assert.NotContains(t, fields, FieldEnabledFlag)
}

func TestFilterPayloadUpdateOmitsCreatedBy(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	fields := desc.FilterPayload(map[string]any{"amount": 1.0}, Caller{UserID: "u-2"}, false, false)
	assert.NotContains(t, fields, FieldCreatedBy)
	assert.Equal(t, "u-2", fields[FieldUpdatedBy])
}

func TestFilterPayloadKeepPK(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	fields := desc.FilterPayload(map[string]any{"id": 7, "reference": "r"}, Caller{}, true, true)
	assert.Equal(t, 7, fields["id"])
}

func TestValidateCreate(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	err = desc.ValidateCreate(map[string]any{"amount": 3.0})
	assert.ErrorIs(t, err, ErrValidation)

	err = desc.ValidateCreate(map[string]any{"reference": "ord-2"})
	assert.NoError(t, err)
}

func TestRelationIDs(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	rels := desc.RelationIDs(map[string]any{
		"tags_refids": []any{1, 2, 3},
		"reference":   "r",
	})
	require.Contains(t, rels, "tags")
	assert.Len(t, rels["tags"], 3)
}

func TestCoercePK(t *testing.T) {
	desc, err := Describe[order]()
	require.NoError(t, err)

	id, err := desc.CoercePK("42")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	id, err = desc.CoercePK(float64(7)) // JSON numbers arrive as float64
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	_, err = desc.CoercePK("not-a-number")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = desc.CoercePK(-1)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
