package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSQLiteDefaults(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./data/app.db", "./data/app.db?_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"./data/app.db?_pragma=foreign_keys(1)", "./data/app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"app.db?_pragma=busy_timeout(100)&_txlock=deferred", "app.db?_pragma=busy_timeout(100)&_txlock=deferred"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, withSQLiteDefaults(tt.in), tt.in)
	}
}

func TestIsMemory(t *testing.T) {
	assert.True(t, isMemory(":memory:?_pragma=foreign_keys(1)"))
	assert.True(t, isMemory("file:test?mode=memory&cache=shared"))
	assert.False(t, isMemory("./data/app.db"))
}
