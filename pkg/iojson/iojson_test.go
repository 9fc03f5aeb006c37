package iojson

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteWith(&out, &errOut, map[string]string{"branch": "main"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"branch": "main"}`, out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	_ = WriteWith(&out, &errOut, make(chan int))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}

func TestWriteLinesWith(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteLinesWith(&out, &errOut, []map[string]int{{"a": 1}, {"b": 2}})
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", out.String())
}

func TestMarshalError(t *testing.T) {
	got := MarshalError("git status: exit 128", map[string]any{"dir": "/repo"})
	assert.Contains(t, got, `"message": "git status: exit 128"`)
	assert.Contains(t, got, `"dir": "/repo"`)
}
