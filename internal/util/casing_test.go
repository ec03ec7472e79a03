package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Counter":       "counter",
		"CounterStore":  "counter_store",
		"HTTPStore":     "http_store",
		"userID":        "user_id",
		"already_snake": "already_snake",
		"Todo-List":     "todo_list",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}

func TestToPascalAndCamel(t *testing.T) {
	assert.Equal(t, "CounterStore", ToPascalCase("counter_store"))
	assert.Equal(t, "TodoList", ToPascalCase("todo-list"))
	assert.Equal(t, "counterStore", ToCamelCase("counter_store"))
	assert.Equal(t, "", ToCamelCase(""))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Counter", ShortName("example.com/app.Counter"))
	assert.Equal(t, "app", ShortName("example.com/app"))
	assert.Equal(t, "Counter", ShortName("Counter"))
	assert.Equal(t, "*", ShortName("*"))
	assert.Equal(t, "OnReset", ShortName("example.com/app.Counter.OnReset"))
}
