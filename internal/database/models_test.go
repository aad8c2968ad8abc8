package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"bytes", []byte("abc"), "abc"},
		{"int", int64(42), "42"},
		{"time", ts, "2024-03-01T10:00:00Z"},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestQueryResultStringRows(t *testing.T) {
	r := QueryResult{
		Columns: []string{"id", "name"},
		Rows:    [][]any{{int64(1), "ada"}, {int64(2), nil}},
	}

	assert.False(t, r.Failed())
	assert.Equal(t, [][]string{{"1", "ada"}, {"2", "NULL"}}, r.StringRows())
	assert.True(t, QueryResult{Error: "boom"}.Failed())
}
