package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrPipelineUnavailable wraps transport and non-2xx failures from the
// workflow webhook.
var ErrPipelineUnavailable = errors.New("voice pipeline is unavailable")

// PipelineResult is the assistant's reply: the spoken/written response, any
// structured items it extracted, and optionally ready-to-play audio when the
// pipeline synthesized its own.
type PipelineResult struct {
	Response string
	Items    []string
	Audio    []byte
}

type Pipeline interface {
	Process(ctx context.Context, userId int, audio io.Reader, filename string) (PipelineResult, error)
}

// PipelineClient posts recorded audio to the external workflow webhook and
// decodes whichever response shape the workflow produces.
type PipelineClient struct {
	webhookUrl string
	httpClient *http.Client
}

func NewPipelineClient(webhookUrl string) *PipelineClient {
	return &PipelineClient{
		webhookUrl: webhookUrl,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *PipelineClient) Process(ctx context.Context, userId int, audio io.Reader, filename string) (PipelineResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("failed to build pipeline request: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return PipelineResult{}, fmt.Errorf("failed to read audio upload: %w", err)
	}
	if err := writer.WriteField("userId", strconv.Itoa(userId)); err != nil {
		return PipelineResult{}, fmt.Errorf("failed to build pipeline request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return PipelineResult{}, fmt.Errorf("failed to build pipeline request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookUrl, &body)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("failed to build pipeline request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("%w: %v", ErrPipelineUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PipelineResult{}, fmt.Errorf("%w: webhook returned %d", ErrPipelineUnavailable, resp.StatusCode)
	}

	return parsePipelineResponse(resp.Header.Get("Content-Type"), resp.Body)
}

// parsePipelineResponse handles the response shapes the workflow is known to
// produce: a JSON document (current and legacy layouts) or a multipart body
// carrying a JSON metadata part plus a binary audio part.
func parsePipelineResponse(contentType string, body io.Reader) (PipelineResult, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "application/json"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return parseMultipartResponse(multipart.NewReader(body, params["boundary"]))
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("failed to read pipeline response: %w", err)
	}
	return parseJSONResponse(raw)
}

func parseJSONResponse(raw []byte) (PipelineResult, error) {
	// Current shape: {"output": {"response": "...", "items": [...]}}.
	var wrapped struct {
		Output struct {
			Response string   `json:"response"`
			Items    []string `json:"items"`
		} `json:"output"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Output.Response != "" {
		return PipelineResult{Response: wrapped.Output.Response, Items: wrapped.Output.Items}, nil
	}

	// Legacy shape: the same fields at the top level.
	var flat struct {
		Response string   `json:"response"`
		Items    []string `json:"items"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Response != "" {
		return PipelineResult{Response: flat.Response, Items: flat.Items}, nil
	}

	// Oldest shape: a bare JSON string.
	var text string
	if err := json.Unmarshal(raw, &text); err == nil && text != "" {
		return PipelineResult{Response: text}, nil
	}

	log.Warnf("unrecognized pipeline response: %.200s", raw)
	return PipelineResult{}, fmt.Errorf("%w: unrecognized response shape", ErrPipelineUnavailable)
}

func parseMultipartResponse(reader *multipart.Reader) (PipelineResult, error) {
	var result PipelineResult
	var sawMetadata bool

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PipelineResult{}, fmt.Errorf("failed to read pipeline response part: %w", err)
		}

		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		raw, err := io.ReadAll(part)
		if err != nil {
			return PipelineResult{}, fmt.Errorf("failed to read pipeline response part: %w", err)
		}

		if partType == "application/json" {
			metadata, err := parseJSONResponse(raw)
			if err != nil {
				return PipelineResult{}, err
			}
			result.Response = metadata.Response
			result.Items = metadata.Items
			sawMetadata = true
			continue
		}
		result.Audio = raw
	}

	if !sawMetadata {
		return PipelineResult{}, fmt.Errorf("%w: multipart response without metadata part", ErrPipelineUnavailable)
	}
	return result, nil
}
