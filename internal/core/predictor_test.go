package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/imgclass/internal/core/hasher"
	"github.com/agenthands/imgclass/internal/core/model"
	"github.com/agenthands/imgclass/internal/inference"
	"github.com/agenthands/imgclass/internal/store"
)

func newTestPredictor() (*Predictor, *MockStore, *MockInference) {
	st := NewMockStore()
	inf := &MockInference{Result: model.PredictionResult{Label: "Eskimo_dog", Score: 0.9338}}
	return NewPredictor(st, inf, nil, nil), st, inf
}

func TestPredict(t *testing.T) {
	p, st, inf := newTestPredictor()
	img := model.UploadedImage{Filename: "dog.jpeg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}

	out, err := p.Predict(context.Background(), img)
	require.NoError(t, err)

	wantKey, _ := hasher.KeyBytes("dog.jpeg", img.Data)
	assert.True(t, out.Response.Success)
	require.NotNil(t, out.Response.Prediction)
	assert.Equal(t, "Eskimo_dog", *out.Response.Prediction)
	require.NotNil(t, out.Response.Score)
	assert.InDelta(t, 0.9338, *out.Response.Score, 1e-9)
	require.NotNil(t, out.Response.ImageFileName)
	assert.Equal(t, wantKey.String(), *out.Response.ImageFileName)
	assert.True(t, out.Stored.Created)

	require.Len(t, inf.Seen, 1)
	assert.Equal(t, wantKey, inf.Seen[0].Key)
	assert.Contains(t, st.Files, wantKey)
}

func TestPredictDuplicateUpload(t *testing.T) {
	p, st, _ := newTestPredictor()
	img := model.UploadedImage{Filename: "dog.jpeg", Data: []byte("same")}

	first, err := p.Predict(context.Background(), img)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), img)
	require.NoError(t, err)

	assert.True(t, first.Stored.Created)
	assert.False(t, second.Stored.Created)
	assert.Equal(t, *first.Response.ImageFileName, *second.Response.ImageFileName)
	assert.Len(t, st.Files, 1)
}

func TestPredictValidation(t *testing.T) {
	tests := []struct {
		name string
		img  model.UploadedImage
		want error
	}{
		{"no file", model.UploadedImage{}, ErrNoFile},
		{"text file", model.UploadedImage{Filename: "notes.txt", Data: []byte("hi")}, ErrUnsupportedType},
		{"no extension", model.UploadedImage{Filename: "dog", Data: []byte("hi")}, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, st, inf := newTestPredictor()

			_, err := p.Predict(context.Background(), tt.img)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var ce *ClientError
			assert.True(t, errors.As(err, &ce))
			assert.Zero(t, st.Puts, "nothing stored for rejected uploads")
			assert.Empty(t, inf.Seen)
		})
	}
}

func TestPredictStorageFailure(t *testing.T) {
	p, st, inf := newTestPredictor()
	st.Err = errors.New("read-only file system")

	_, err := p.Predict(context.Background(), model.UploadedImage{Filename: "a.png", Data: []byte("x")})
	require.Error(t, err)

	var se *store.StorageError
	assert.True(t, errors.As(err, &se))
	var ce *ClientError
	assert.False(t, errors.As(err, &ce))
	assert.Empty(t, inf.Seen)
}

func TestPredictInferenceFailure(t *testing.T) {
	p, _, inf := newTestPredictor()
	inf.Err = &inference.InferenceError{Provider: "redis", Key: "k", Err: inference.ErrMalformed}

	out, err := p.Predict(context.Background(), model.UploadedImage{Filename: "a.png", Data: []byte("x")})
	require.Error(t, err)
	assert.False(t, out.Response.Success)
	assert.Nil(t, out.Response.Prediction)

	var ie *inference.InferenceError
	assert.True(t, errors.As(err, &ie))
}

func TestPredictCustomExtensions(t *testing.T) {
	st := NewMockStore()
	p := NewPredictor(st, &MockInference{Result: model.PredictionResult{Label: "x", Score: 1}}, []string{".webp"}, nil)

	_, err := p.Predict(context.Background(), model.UploadedImage{Filename: "a.png", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = p.Predict(context.Background(), model.UploadedImage{Filename: "a.WEBP", Data: []byte("x")})
	assert.NoError(t, err)
}
