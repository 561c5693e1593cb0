// Path: internal/domain/models_test.go
package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_NilMarshalsAsEmptyArray(t *testing.T) {
	var list StringList

	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestStringList_MarshalsValues(t *testing.T) {
	raw, err := json.Marshal(StringList{"a", "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(raw))
}

func TestStringList_OrEmpty(t *testing.T) {
	var nilList StringList
	assert.NotNil(t, nilList.OrEmpty())
	assert.Empty(t, nilList.OrEmpty())

	filled := StringList{"x"}
	assert.Equal(t, filled, filled.OrEmpty())
}

func TestRepoDetail_SolvesNeverNullInJSON(t *testing.T) {
	raw, err := json.Marshal(RepoDetail{RepoName: "a/b"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"solves":[]`)
	assert.Contains(t, string(raw), `"topics":[]`)
}
