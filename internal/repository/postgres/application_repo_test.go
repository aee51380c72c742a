package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountByStatusQuery(t *testing.T) {
	query, args := countByStatusQuery(0)
	assert.NotContains(t, query, "JOIN")
	assert.Empty(t, args)

	query, args = countByStatusQuery(2025)
	assert.Contains(t, query, "JOIN students s ON s.id = a.student_id")
	assert.Contains(t, query, "s.batch_year = $1")
	assert.Equal(t, []any{2025}, args)
}
