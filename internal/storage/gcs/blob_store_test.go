package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type bufferWriter struct {
	bytes.Buffer
	closed   bool
	closeErr error
}

func (b *bufferWriter) Close() error {
	b.closed = true
	return b.closeErr
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("reader broke") }

func newTestStore(w *bufferWriter, gotObject *string, gotType *string) *BlobStore {
	return &BlobStore{
		bucket: "snapshots",
		newWriter: func(_ context.Context, _, object, contentType string) io.WriteCloser {
			*gotObject = object
			*gotType = contentType
			return w
		},
	}
}

func TestPutObjectUploads(t *testing.T) {
	t.Parallel()

	var object, contentType string
	w := &bufferWriter{}
	store := newTestStore(w, &object, &contentType)

	uri, err := store.PutObject(context.Background(), "passes/a.json", "application/json", strings.NewReader("[]"))
	require.NoError(t, err)
	require.Equal(t, "gs://snapshots/passes/a.json", uri)
	require.Equal(t, "passes/a.json", object)
	require.Equal(t, "application/json", contentType)
	require.Equal(t, "[]", w.String())
	require.True(t, w.closed)
}

func TestPutObjectErrors(t *testing.T) {
	t.Parallel()

	var object, contentType string
	store := newTestStore(&bufferWriter{}, &object, &contentType)
	_, err := store.PutObject(context.Background(), "", "", strings.NewReader("x"))
	require.ErrorContains(t, err, "path is required")

	w := &bufferWriter{}
	store = newTestStore(w, &object, &contentType)
	_, err = store.PutObject(context.Background(), "a", "", failingReader{})
	require.ErrorContains(t, err, "reader broke")
	require.True(t, w.closed)

	store = newTestStore(&bufferWriter{closeErr: errors.New("quota")}, &object, &contentType)
	_, err = store.PutObject(context.Background(), "a", "", strings.NewReader("x"))
	require.ErrorContains(t, err, "close writer: quota")
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "b"})
	require.Error(t, err)
}
