package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	for _, m := range migrations {
		stmt := strings.ToUpper(strings.Join(strings.Fields(m), " "))
		if strings.HasPrefix(stmt, "CREATE") {
			assert.Contains(t, stmt, "IF NOT EXISTS", m)
		}
	}
}

func TestConversationPairIsUnique(t *testing.T) {
	var found bool
	for _, m := range migrations {
		if strings.Contains(m, "conversations_pair_uq") {
			found = true
		}
	}
	assert.True(t, found, "conversations need a unique index on the unordered pair")
}
