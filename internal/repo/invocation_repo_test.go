package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalResult(t *testing.T) {
	data, err := marshalResult(nil)
	require.NoError(t, err)
	assert.Nil(t, data, "empty result is stored as NULL")

	data, err = marshalResult(map[string]any{"author": "bob"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"author":"bob"}`, string(data))

	_, err = marshalResult(make(chan int))
	assert.Error(t, err)
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	require.NotNil(t, nullString("x"))
	assert.Equal(t, "x", *nullString("x"))
}
