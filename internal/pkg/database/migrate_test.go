package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMigrateURL(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"postgres://u:p@localhost:5432/hrm?sslmode=disable", "pgx5://u:p@localhost:5432/hrm?sslmode=disable"},
		{"postgresql://u:p@db/hrm", "pgx5://u:p@db/hrm"},
		{"pgx5://already/converted", "pgx5://already/converted"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, toMigrateURL(c.input), c.input)
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
