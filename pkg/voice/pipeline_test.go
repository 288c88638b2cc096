package voice

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processAgainst(t *testing.T, handler http.HandlerFunc) (PipelineResult, error) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewPipelineClient(server.URL)
	return client.Process(context.Background(), 123, strings.NewReader("fake-audio"), "recording.webm")
}

func TestProcess_SendsMultipartAudioAndUserId(t *testing.T) {
	var gotUserId string
	var gotAudio []byte
	var gotFilename string

	result, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotUserId = r.FormValue("userId")

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotAudio, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":{"response":"ok"}}`))
	})
	require.NoError(t, err)

	assert.Equal(t, "123", gotUserId)
	assert.Equal(t, "recording.webm", gotFilename)
	assert.Equal(t, []byte("fake-audio"), gotAudio)
	assert.Equal(t, "ok", result.Response)
}

func TestProcess_CurrentJSONShape(t *testing.T) {
	result, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":{"response":"Adicionei a tarefa","items":["comprar leite"]}}`))
	})
	require.NoError(t, err)

	assert.Equal(t, "Adicionei a tarefa", result.Response)
	assert.Equal(t, []string{"comprar leite"}, result.Items)
	assert.Nil(t, result.Audio)
}

func TestProcess_LegacyFlatShape(t *testing.T) {
	result, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"entendi","items":["a","b"]}`))
	})
	require.NoError(t, err)

	assert.Equal(t, "entendi", result.Response)
	assert.Equal(t, []string{"a", "b"}, result.Items)
}

func TestProcess_LegacyBareString(t *testing.T) {
	result, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"so texto"`))
	})
	require.NoError(t, err)

	assert.Equal(t, "so texto", result.Response)
}

func TestProcess_MultipartResponse(t *testing.T) {
	result, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)

		metaHeader := textproto.MIMEHeader{}
		metaHeader.Set("Content-Type", "application/json")
		meta, err := writer.CreatePart(metaHeader)
		require.NoError(t, err)
		_, _ = meta.Write([]byte(`{"output":{"response":"com audio","items":[]}}`))

		audioHeader := textproto.MIMEHeader{}
		audioHeader.Set("Content-Type", "audio/mpeg")
		audio, err := writer.CreatePart(audioHeader)
		require.NoError(t, err)
		_, _ = audio.Write([]byte{0x49, 0x44, 0x33})

		require.NoError(t, writer.Close())

		w.Header().Set("Content-Type", "multipart/mixed; boundary="+writer.Boundary())
		_, _ = w.Write(body.Bytes())
	})
	require.NoError(t, err)

	assert.Equal(t, "com audio", result.Response)
	assert.Equal(t, []byte{0x49, 0x44, 0x33}, result.Audio)
}

func TestProcess_MultipartWithoutMetadata(t *testing.T) {
	_, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)

		audioHeader := textproto.MIMEHeader{}
		audioHeader.Set("Content-Type", "audio/mpeg")
		audio, err := writer.CreatePart(audioHeader)
		require.NoError(t, err)
		_, _ = audio.Write([]byte{0x01})
		require.NoError(t, writer.Close())

		w.Header().Set("Content-Type", "multipart/mixed; boundary="+writer.Boundary())
		_, _ = w.Write(body.Bytes())
	})
	assert.ErrorIs(t, err, ErrPipelineUnavailable)
}

func TestProcess_UpstreamFailure(t *testing.T) {
	_, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.ErrorIs(t, err, ErrPipelineUnavailable)
}

func TestProcess_UnrecognizedShape(t *testing.T) {
	_, err := processAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unexpected":true}`))
	})
	assert.ErrorIs(t, err, ErrPipelineUnavailable)
}
