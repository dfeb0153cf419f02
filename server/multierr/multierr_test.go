package multierr_test

import (
	"io"
	"testing"

	"github.com/hiCozyty/zmq-bridge/server/multierr"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestMultiErr(t *testing.T) {
	t.Parallel()

	m := multierr.New()
	assert.NoError(t, m.Err())

	m.Add(nil)
	assert.NoError(t, m.Err())

	err1 := errors.New("close link")
	m.Add(err1)
	assert.Equal(t, err1, m.Err())

	m.Add(errors.New("close server"))

	err := m.Err()
	assert.Contains(t, err.Error(), "There were multiple errors")
	assert.Contains(t, err.Error(), "1. ")
	assert.Contains(t, err.Error(), "close link")
	assert.Contains(t, err.Error(), "2. ")
	assert.Contains(t, err.Error(), "close server")
}

func TestIs(t *testing.T) {
	t.Parallel()

	err := errors.Annotate(errors.Trace(io.EOF), "read")

	assert.True(t, multierr.Is(err, io.EOF))
	assert.False(t, multierr.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, multierr.Is(nil, io.EOF))
}
