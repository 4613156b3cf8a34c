package filestore

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	bytes.Buffer
	closed bool
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestUpload_ReadFailureAborts(t *testing.T) {
	w := &recordingWriter{}
	var aborted bool

	r := io.MultiReader(
		bytes.NewReader([]byte("%PDF-1.4 partial")),
		iotest.ErrReader(errors.New("connection reset")),
	)
	err := upload(w, func() { aborted = true }, r, "gs://bucket/invoices/i1/invoice_o1.pdf")

	require.Error(t, err)
	assert.True(t, aborted, "upload must be cancelled")
	assert.False(t, w.closed, "closing would commit the partial object")
}

func TestUpload_Commits(t *testing.T) {
	w := &recordingWriter{}
	var aborted bool

	err := upload(w, func() { aborted = true }, bytes.NewReader([]byte("%PDF-1.4")), "gs://bucket/k")

	require.NoError(t, err)
	assert.False(t, aborted)
	assert.True(t, w.closed)
	assert.Equal(t, "%PDF-1.4", w.String())
}
