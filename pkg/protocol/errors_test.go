package protocol_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/pkg/protocol"
)

func TestMalformedRecordError_ErrorsAs(t *testing.T) {
	err := error(&protocol.MalformedRecordError{Source: "last_habit", Err: io.ErrUnexpectedEOF})

	var target *protocol.MalformedRecordError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "last_habit", target.Source)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "last_habit")
}
