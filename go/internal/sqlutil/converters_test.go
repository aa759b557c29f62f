package sqlutil

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/assert"
)

func TestSqlString(t *testing.T) {
	assert.Equal(t, sql.NullString{}, ToSqlString(""))
	assert.Equal(t, sql.NullString{String: "p1", Valid: true}, ToSqlString("p1"))

	assert.Equal(t, "p1", FromSqlString(sql.NullString{String: "p1", Valid: true}, "x"))
	assert.Equal(t, "x", FromSqlString(sql.NullString{}, "x"))
}

func TestNullRawMessage(t *testing.T) {
	assert.False(t, ToNullRawMessage(nil).Valid)

	raw := json.RawMessage(`{"a":1.5}`)
	got := ToNullRawMessage(raw)
	assert.True(t, got.Valid)
	assert.JSONEq(t, `{"a":1.5}`, string(got.RawMessage))

	assert.Nil(t, FromNullRawMessage(pqtype.NullRawMessage{}))
	assert.Equal(t, raw, FromNullRawMessage(got))
}
