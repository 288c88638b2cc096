package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/controle-c/jarvis/internal/config"
)

// ErrSynthesisFailed means the speech API could not produce audio. Callers
// return the transcript without audio so the client can fall back to
// on-device synthesis.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TTSClient converts assistant replies into audio via the configured speech
// API.
type TTSClient struct {
	cfg        config.TTS
	httpClient *http.Client
}

func NewTTSClient(cfg config.TTS) *TTSClient {
	return &TTSClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type ttsRequest struct {
	Model string  `json:"model"`
	Voice string  `json:"voice"`
	Input string  `json:"input"`
	Speed float64 `json:"speed"`
}

func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(ttsRequest{
		Model: c.cfg.Model,
		Voice: c.cfg.Voice,
		Input: text,
		Speed: c.cfg.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: speech API returned %d", ErrSynthesisFailed, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio response", ErrSynthesisFailed)
	}
	return audio, nil
}
