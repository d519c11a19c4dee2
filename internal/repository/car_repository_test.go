package repository

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The cars table has a column named after a MySQL reserved word. An
// unquoted `condition` in a column list or SET clause is a parse error
// on the server, so every statement that writes the column must quote
// it. Alias-qualified reads (c.condition) are exempt from quoting.
func TestCarWriteStatementsQuoteConditionColumn(t *testing.T) {
	unquoted := regexp.MustCompile(`[^.\x60]condition\b`)

	for name, q := range map[string]string{
		"insert":       carInsertSQL,
		"update owned": carUpdateOwnedSQL,
	} {
		assert.Contains(t, q, "`condition`", "%s statement", name)
		assert.NotRegexp(t, unquoted, q, "%s statement carries a bare reserved word", name)
	}
}
