package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "($1, $2, $3)", Placeholders(1, 3))
	assert.Equal(t, "($1, $2), ($3, $4), ($5, $6)", Placeholders(3, 2))
	assert.Equal(t, "", Placeholders(0, 3))
}

func TestPgErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}
