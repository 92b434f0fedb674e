package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-rag-api/internal/infrastructure/messaging"
)

func TestUploadHandlerRunsPipeline(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"k.txt": []byte("Some paper text.")}}
	repo := &fakeRepo{}
	p := newTestPipeline(store, &fakeEmbedder{vector: []float32{0.1}}, &fakeIndexer{}, repo, nil)
	handle := NewUploadHandler(p)

	msg, err := messaging.NewMessage("m1", messaging.MessageTypePaperUploaded, "bucket/k.txt",
		messaging.PaperUploadedMessage{Event: "FileUploaded", Bucket: "bucket", FileName: "k.txt"})
	require.NoError(t, err)

	require.NoError(t, handle(context.Background(), msg))
	require.Len(t, repo.created, 1)
	assert.Equal(t, "k.txt", repo.created[0].SourceKey)
}

func TestUploadHandlerSkipsUnexpectedType(t *testing.T) {
	repo := &fakeRepo{}
	p := newTestPipeline(&fakeStore{}, &fakeEmbedder{}, &fakeIndexer{}, repo, nil)
	handle := NewUploadHandler(p)

	msg, err := messaging.NewMessage("m2", "something_else", "bucket/k.txt",
		map[string]string{"whatever": "x"})
	require.NoError(t, err)

	// 跳过而不是报错，避免进入重试和死信流程
	require.NoError(t, handle(context.Background(), msg))
	assert.Empty(t, repo.created)
}

func TestUploadHandlerMissingFileName(t *testing.T) {
	p := newTestPipeline(&fakeStore{}, &fakeEmbedder{}, &fakeIndexer{}, &fakeRepo{}, nil)
	handle := NewUploadHandler(p)

	msg, err := messaging.NewMessage("m3", messaging.MessageTypePaperUploaded, "bucket/",
		messaging.PaperUploadedMessage{Event: "FileUploaded", Bucket: "bucket", FileName: "  "})
	require.NoError(t, err)

	assert.Error(t, handle(context.Background(), msg))
}
