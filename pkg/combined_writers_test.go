package pkg

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCombinedWriter_Write(t *testing.T) {
	sb1 := &strings.Builder{}
	initMessage := "already-here"
	sb1.WriteString(initMessage)
	sb2 := &strings.Builder{}

	cw := NewCombinedWriter(sb1, nil, sb2)
	require.NotNil(t, cw)
	assert.Equal(t, 2, cw.Len())

	msg1 := "record saved"
	msg2 := "fetched blog data"
	n, err := cw.Write([]byte(msg1))
	require.NoError(t, err)
	assert.Equal(t, len(msg1), n)
	n, err = cw.Write([]byte(msg2))
	require.NoError(t, err)
	assert.Equal(t, len(msg2), n)

	assert.Equal(t, initMessage+msg1+msg2, sb1.String())
	assert.Equal(t, msg1+msg2, sb2.String())
}

func TestCombinedWriter_Write_WithError(t *testing.T) {
	sb := &strings.Builder{}

	cw := NewCombinedWriter(&faultyWriter{}, sb, &shortWriter{})
	require.Equal(t, 3, cw.Len())

	msg := "generate blog failed"
	n, err := cw.Write([]byte(msg))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, io.ErrShortWrite)

	// delivered to the string builder
	assert.Equal(t, len(msg), n)
	assert.Equal(t, msg, sb.String())
}

func TestCombinedWriter_Write_AllFail(t *testing.T) {
	cw := NewCombinedWriter(&faultyWriter{}, &faultyWriter{})

	n, err := cw.Write([]byte("lost"))
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

type faultyWriter struct{}

func (fw *faultyWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

type shortWriter struct{}

func (sw *shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, nil
}
