package voice

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/controle-c/jarvis/pkg/user"
	log "github.com/sirupsen/logrus"
)

// ErrAssistantDisabled means the user has turned the voice assistant off in
// their settings.
var ErrAssistantDisabled = errors.New("voice assistant is disabled")

// ErrBusy means a voice interaction is already in flight for the user.
var ErrBusy = errors.New("a voice interaction is already in progress")

// Reply is what an interaction produces. Audio is nil when synthesis failed;
// the client then falls back to on-device speech.
type Reply struct {
	Response string
	Items    []string
	Audio    []byte
}

type Service struct {
	sessions *Sessions
	pipeline Pipeline
	tts      Synthesizer
}

func NewService(pipeline Pipeline, tts Synthesizer) *Service {
	return &Service{
		sessions: NewSessions(),
		pipeline: pipeline,
		tts:      tts,
	}
}

// State reports where the user's voice session currently stands.
func (s *Service) State(ctx context.Context) (State, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return s.sessions.For(userId).State(), nil
}

// Transcribe runs one full interaction: the uploaded audio goes to the
// workflow pipeline, the reply text goes to speech synthesis, and the
// session walks listening -> thinking -> speaking -> idle. A concurrent
// upload for the same user is rejected instead of interleaving states.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string) (Reply, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !currentUser.Settings.VoiceAssistant {
		return Reply{}, ErrAssistantDisabled
	}

	session := s.sessions.For(currentUser.Id)
	if err := session.Transition(StateListening); err != nil {
		return Reply{}, fmt.Errorf("%w (session is %s)", ErrBusy, session.State())
	}
	defer session.Reset()

	if err := session.Transition(StateThinking); err != nil {
		return Reply{}, err
	}
	result, err := s.pipeline.Process(ctx, currentUser.Id, audio, filename)
	if err != nil {
		return Reply{}, err
	}

	if err := session.Transition(StateSpeaking); err != nil {
		return Reply{}, err
	}
	reply := Reply{Response: result.Response, Items: result.Items, Audio: result.Audio}
	if reply.Audio == nil {
		reply.Audio, err = s.tts.Synthesize(ctx, result.Response)
		if err != nil {
			// The transcript still goes back; the client synthesizes
			// locally.
			log.Warnf("speech synthesis failed for user %d: %v", currentUser.Id, err)
			reply.Audio = nil
		}
	}
	return reply, nil
}

// Speak synthesizes arbitrary text without touching the session. Used for
// announcements that do not originate from a recording.
func (s *Service) Speak(ctx context.Context, text string) ([]byte, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if !currentUser.Settings.VoiceAssistant {
		return nil, ErrAssistantDisabled
	}
	return s.tts.Synthesize(ctx, text)
}
