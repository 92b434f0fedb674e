package paper

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-rag-api/internal/domain/entity"
	"research-rag-api/internal/infrastructure/arxiv"
	"research-rag-api/internal/infrastructure/messaging"
	apperrors "research-rag-api/pkg/errors"
)

type fakeStore struct {
	keys        []string
	data        [][]byte
	contentType string
	err         error
}

func (f *fakeStore) PutObject(_ context.Context, key string, data []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.data = append(f.data, data)
	f.contentType = contentType
	return nil
}

func (f *fakeStore) Bucket() string { return "papers-bucket" }

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

type fakePublisher struct {
	messages []*messaging.PaperUploadedMessage
	err      error
}

func (f *fakePublisher) PublishPaperUploaded(_ context.Context, msg *messaging.PaperUploadedMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.messages = append(f.messages, msg)
	return "1-0", nil
}

type fakeRepo struct {
	records []*entity.SummaryRecord
	err     error
}

func (f *fakeRepo) Create(_ context.Context, record *entity.SummaryRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*entity.SummaryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context) ([]*entity.SummaryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeSpeech struct {
	inputs []string
	audio  []byte
	err    error
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, text)
	return f.audio, nil
}

type fakeTrending struct {
	papers []arxiv.Paper
	err    error
}

func (f *fakeTrending) Trending(_ context.Context) ([]arxiv.Paper, error) {
	return f.papers, f.err
}

func newTestService(store *fakeStore, extractor *fakeExtractor, publisher *fakePublisher, repo *fakeRepo) *Service {
	s := NewService(store, extractor, publisher, repo, &fakeSpeech{audio: []byte("mp3")}, &fakeTrending{})
	s.now = func() time.Time { return time.Date(2024, 5, 17, 12, 30, 45, 0, time.UTC) }
	return s
}

func pdfPayload() string {
	return base64.StdEncoding.EncodeToString([]byte("%PDF-1.7 fake body"))
}

func TestUpload(t *testing.T) {
	store := &fakeStore{}
	extractor := &fakeExtractor{text: "Extracted paper text."}
	publisher := &fakePublisher{}

	s := newTestService(store, extractor, publisher, &fakeRepo{})

	result, err := s.Upload(context.Background(), UploadInput{
		FileName:    "My Paper (v2).pdf",
		ContentB64:  pdfPayload(),
		NotifyEmail: "reader@example.com",
	})
	require.NoError(t, err)

	// 文件名清洗加时间戳前缀，扩展名固定 .txt
	assert.Equal(t, "20240517123045-My_Paper__v2_.txt", result.FileKey)
	assert.Equal(t, "My Paper (v2).pdf", result.OriginalName)
	assert.Equal(t, "papers-bucket", result.Bucket)

	// 存的是提取后的正文
	require.Len(t, store.keys, 1)
	assert.Equal(t, result.FileKey, store.keys[0])
	assert.Equal(t, "Extracted paper text.", string(store.data[0]))
	assert.Equal(t, "text/plain; charset=utf-8", store.contentType)

	// 发布摄取消息
	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, "FileUploaded", msg.Event)
	assert.Equal(t, "papers-bucket", msg.Bucket)
	assert.Equal(t, result.FileKey, msg.FileName)
	assert.Equal(t, "My Paper (v2).pdf", msg.OriginalName)
	assert.Equal(t, "reader@example.com", msg.Email)
	assert.Equal(t, "2024-05-17T12:30:45Z", msg.Timestamp)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	s := newTestService(&fakeStore{}, &fakeExtractor{text: "x"}, &fakePublisher{}, &fakeRepo{})

	_, err := s.Upload(context.Background(), UploadInput{
		FileName:   "notes.txt",
		ContentB64: base64.StdEncoding.EncodeToString([]byte("plain text, no magic")),
	})
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)
}

func TestUploadRejectsBadBase64(t *testing.T) {
	s := newTestService(&fakeStore{}, &fakeExtractor{}, &fakePublisher{}, &fakeRepo{})

	_, err := s.Upload(context.Background(), UploadInput{
		FileName:   "p.pdf",
		ContentB64: "not!!base64%%",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	s := newTestService(&fakeStore{}, &fakeExtractor{}, &fakePublisher{}, &fakeRepo{})

	big := append([]byte("%PDF"), make([]byte, MaxUploadBytes)...)
	_, err := s.Upload(context.Background(), UploadInput{
		FileName:   "big.pdf",
		ContentB64: base64.StdEncoding.EncodeToString(big),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePayloadTooLarge, apperrors.AsAppError(err).Code)
}

func TestUploadRejectsMissingFields(t *testing.T) {
	s := newTestService(&fakeStore{}, &fakeExtractor{}, &fakePublisher{}, &fakeRepo{})

	_, err := s.Upload(context.Background(), UploadInput{ContentB64: pdfPayload()})
	require.Error(t, err)

	_, err = s.Upload(context.Background(), UploadInput{FileName: "p.pdf"})
	require.Error(t, err)
}

func TestUploadExtractionFailure(t *testing.T) {
	store := &fakeStore{}
	extractor := &fakeExtractor{err: errors.New("corrupt xref")}

	s := newTestService(store, extractor, &fakePublisher{}, &fakeRepo{})

	_, err := s.Upload(context.Background(), UploadInput{
		FileName:   "p.pdf",
		ContentB64: pdfPayload(),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTextExtractFailed, apperrors.AsAppError(err).Code)
	assert.Empty(t, store.keys)
}

func TestUploadPublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("stream gone")}

	s := newTestService(&fakeStore{}, &fakeExtractor{text: "x"}, publisher, &fakeRepo{})

	_, err := s.Upload(context.Background(), UploadInput{
		FileName:   "p.pdf",
		ContentB64: pdfPayload(),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeQueueError, apperrors.AsAppError(err).Code)
}

func TestGet(t *testing.T) {
	repo := &fakeRepo{records: []*entity.SummaryRecord{
		{ID: "abc", SourceKey: "k.txt", Summary: "A summary."},
	}}
	s := newTestService(&fakeStore{}, &fakeExtractor{}, &fakePublisher{}, repo)

	record, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "A summary.", record.Summary)

	_, err = s.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestAudio(t *testing.T) {
	repo := &fakeRepo{records: []*entity.SummaryRecord{
		{ID: "abc", Summary: "Speak this."},
	}}
	speech := &fakeSpeech{audio: []byte("mp3-bytes")}
	s := NewService(&fakeStore{}, &fakeExtractor{}, &fakePublisher{}, repo, speech, &fakeTrending{})

	audio, err := s.Audio(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	require.Len(t, speech.inputs, 1)
	assert.Equal(t, "Speak this.", speech.inputs[0])
}

func TestBuildFileKey(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		original string
		want     string
	}{
		{"simple", "paper.pdf", "20240102030405-paper.txt"},
		{"spaces and symbols", "a b/c:d.pdf", "20240102030405-a_b_c_d.txt"},
		{"no extension", "paper", "20240102030405-paper.txt"},
		{"dotfile keeps name", ".pdf", "20240102030405-paper.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFileKey(tt.original, at))
		})
	}
}
