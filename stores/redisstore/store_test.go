package redisstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"crudapi/crud"
)

func TestDocEnabled(t *testing.T) {
	assert.True(t, docEnabled(map[string]any{crud.FieldEnabledFlag: true}))
	assert.True(t, docEnabled(map[string]any{crud.FieldEnabledFlag: int64(1)}))
	assert.False(t, docEnabled(map[string]any{crud.FieldEnabledFlag: false}))
	assert.False(t, docEnabled(map[string]any{crud.FieldEnabledFlag: int64(0)}))
	// a document without the flag is never served
	assert.False(t, docEnabled(map[string]any{}))
}

func TestMatchScope(t *testing.T) {
	doc := map[string]any{
		crud.FieldEnabledFlag: true,
		crud.FieldCreatedBy:   "u-1",
	}

	assert.True(t, matchScope(doc, crud.Scope{}))
	assert.True(t, matchScope(doc, crud.Scope{SelfOnly: true, UserID: "u-1"}))
	assert.False(t, matchScope(doc, crud.Scope{SelfOnly: true, UserID: "u-2"}))

	disabled := map[string]any{crud.FieldEnabledFlag: false}
	assert.False(t, matchScope(disabled, crud.Scope{}))
	assert.True(t, matchScope(disabled, crud.Scope{IncludeDisabled: true}))
}

func TestSortDocs(t *testing.T) {
	docs := []map[string]any{
		{"id": int64(1), "mass": float64(30)},
		{"id": int64(2), "mass": float64(10)},
		{"id": int64(3), "mass": float64(20)},
	}

	sortDocs(docs, &crud.Sort{Field: "mass"})
	assert.Equal(t, float64(10), docs[0]["mass"])
	assert.Equal(t, float64(30), docs[2]["mass"])

	sortDocs(docs, &crud.Sort{Field: "mass", Desc: true})
	assert.Equal(t, float64(30), docs[0]["mass"])

	// nil sort leaves order untouched
	before := docs[0]["id"]
	sortDocs(docs, nil)
	assert.Equal(t, before, docs[0]["id"])
}

type tuber struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func TestPKStringWireIDs(t *testing.T) {
	desc, err := crud.Describe[tuber]()
	require.NoError(t, err)

	// ids off the wire are float64; past 1e6 fmt alone would render "1e+06"
	assert.Equal(t, "1000000", pkString(desc, float64(1_000_000)))
	assert.Equal(t, "42", pkString(desc, float64(42)))
	assert.Equal(t, "42", pkString(desc, "42"))
	assert.Equal(t, "42", pkString(desc, int64(42)))

	// uncoercible values fall back to plain formatting
	assert.Equal(t, "pk-9", pkString(desc, "pk-9"))
}

func TestDocRoundTrip(t *testing.T) {
	doc := map[string]any{
		"id":    int64(7),
		"color": "yellow",
		"mass":  float64(120.5),
	}
	blob, err := msgpack.Marshal(doc)
	require.NoError(t, err)

	decoded, err := decodeDoc(blob)
	require.NoError(t, err)
	assert.Equal(t, "yellow", decoded["color"])
	assert.EqualValues(t, 7, decoded["id"])

	_, err = decodeDoc([]byte("not msgpack at all"))
	assert.ErrorIs(t, err, crud.ErrBackend)
}
