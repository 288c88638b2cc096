package voice

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/controle-c/jarvis/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	mu      sync.Mutex
	result  PipelineResult
	err     error
	calls   int
	release chan struct{}
}

func (s *stubPipeline) Process(_ context.Context, _ int, audio io.Reader, _ string) (PipelineResult, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	s.mu.Unlock()

	_, _ = io.ReadAll(audio)
	if release != nil {
		<-release
	}
	return s.result, s.err
}

type stubSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

func voiceTestContext(assistantEnabled bool) context.Context {
	return user.WithUser(context.Background(), user.User{
		Id:       123,
		Username: "test_user",
		Settings: user.Settings{VoiceAssistant: assistantEnabled},
	})
}

func TestTranscribe_FullInteraction(t *testing.T) {
	pipeline := &stubPipeline{result: PipelineResult{Response: "anotado", Items: []string{"leite"}}}
	tts := &stubSynthesizer{audio: []byte{0x49}}
	service := NewService(pipeline, tts)

	reply, err := service.Transcribe(voiceTestContext(true), strings.NewReader("audio"), "rec.webm")
	require.NoError(t, err)

	assert.Equal(t, "anotado", reply.Response)
	assert.Equal(t, []string{"leite"}, reply.Items)
	assert.Equal(t, []byte{0x49}, reply.Audio)
	assert.Equal(t, 1, tts.calls)

	state, err := service.State(voiceTestContext(true))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestTranscribe_PipelineAudioSkipsSynthesis(t *testing.T) {
	pipeline := &stubPipeline{result: PipelineResult{Response: "pronto", Audio: []byte{0x02}}}
	tts := &stubSynthesizer{audio: []byte{0x49}}
	service := NewService(pipeline, tts)

	reply, err := service.Transcribe(voiceTestContext(true), strings.NewReader("audio"), "rec.webm")
	require.NoError(t, err)

	assert.Equal(t, []byte{0x02}, reply.Audio)
	assert.Zero(t, tts.calls)
}

func TestTranscribe_SynthesisFailureReturnsTextOnly(t *testing.T) {
	pipeline := &stubPipeline{result: PipelineResult{Response: "anotado"}}
	tts := &stubSynthesizer{err: ErrSynthesisFailed}
	service := NewService(pipeline, tts)

	reply, err := service.Transcribe(voiceTestContext(true), strings.NewReader("audio"), "rec.webm")
	require.NoError(t, err)

	assert.Equal(t, "anotado", reply.Response)
	assert.Nil(t, reply.Audio)
}

func TestTranscribe_PipelineFailureResetsSession(t *testing.T) {
	pipeline := &stubPipeline{err: ErrPipelineUnavailable}
	service := NewService(pipeline, &stubSynthesizer{})

	_, err := service.Transcribe(voiceTestContext(true), strings.NewReader("audio"), "rec.webm")
	assert.ErrorIs(t, err, ErrPipelineUnavailable)

	state, err := service.State(voiceTestContext(true))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestTranscribe_AssistantDisabled(t *testing.T) {
	service := NewService(&stubPipeline{}, &stubSynthesizer{})

	_, err := service.Transcribe(voiceTestContext(false), strings.NewReader("audio"), "rec.webm")
	assert.ErrorIs(t, err, ErrAssistantDisabled)
}

func TestTranscribe_ConcurrentUploadRejected(t *testing.T) {
	release := make(chan struct{})
	pipeline := &stubPipeline{result: PipelineResult{Response: "ok"}, release: release}
	service := NewService(pipeline, &stubSynthesizer{audio: []byte{0x01}})

	firstDone := make(chan error, 1)
	go func() {
		_, err := service.Transcribe(voiceTestContext(true), strings.NewReader("audio"), "rec.webm")
		firstDone <- err
	}()

	// Wait until the first interaction is inside the pipeline call.
	for {
		pipeline.mu.Lock()
		started := pipeline.calls > 0
		pipeline.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	_, err := service.Transcribe(voiceTestContext(true), strings.NewReader("audio"), "rec.webm")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-firstDone)
}

func TestSpeak_Disabled(t *testing.T) {
	service := NewService(&stubPipeline{}, &stubSynthesizer{audio: []byte{0x01}})

	_, err := service.Speak(voiceTestContext(false), "ola")
	assert.ErrorIs(t, err, ErrAssistantDisabled)

	audio, err := service.Speak(voiceTestContext(true), "ola")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, audio)
}

func TestTranscribe_RequiresUser(t *testing.T) {
	service := NewService(&stubPipeline{}, &stubSynthesizer{})

	_, err := service.Transcribe(context.Background(), strings.NewReader("audio"), "rec.webm")
	assert.ErrorIs(t, err, user.ErrNoUser)
}
