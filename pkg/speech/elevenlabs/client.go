package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"grant-assistant-be/pkg/voice"
)

const maxErrorBody = 4 << 10

// Client speaks the speech-to-text and text-to-speech endpoints of the
// voice service. Both calls authenticate with a bearer key.
type Client struct {
	Endpoint string
	APIKey   string
	Language string
	Voice    string
	HTTP     *http.Client
}

var (
	_ voice.Transcriber = &Client{}
	_ voice.Synthesizer = &Client{}
)

func NewClient(endpoint, apiKey, language, voiceName string) *Client {
	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		APIKey:   apiKey,
		Language: language,
		Voice:    voiceName,
		HTTP:     &http.Client{},
	}
}

type transcriptionResponse struct {
	Text       string `json:"text"`
	Transcript string `json:"transcript"`
}

type synthesisRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
	Pitch float64 `json:"pitch"`
}

func (c *Client) Transcribe(ctx context.Context, rec voice.Recording) (string, error) {
	if len(rec.Data) == 0 {
		return "", &voice.CaptureError{Err: errors.New("recording is empty")}
	}

	filename := rec.Filename
	if filename == "" {
		filename = "recording.webm"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("audio", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(rec.Data); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.WriteField("language", c.Language); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/speech-to-text", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.do(req, "speech-to-text")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode transcription: %w", err)
	}

	if result.Text != "" {
		return result.Text, nil
	}
	return result.Transcript, nil
}

func (c *Client) Synthesize(ctx context.Context, text string) (voice.Audio, error) {
	payload, err := json.Marshal(synthesisRequest{Text: text, Voice: c.Voice, Speed: 1.0, Pitch: 1.0})
	if err != nil {
		return voice.Audio{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/text-to-speech", bytes.NewReader(payload))
	if err != nil {
		return voice.Audio{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, "text-to-speech")
	if err != nil {
		return voice.Audio{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return voice.Audio{}, &voice.NetworkError{Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return voice.Audio{ContentType: contentType, Data: data}, nil
}

// do sends req and converts transport and status failures into voice errors.
// On success the caller owns resp.Body.
func (c *Client) do(req *http.Request, service string) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &voice.NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &voice.PermissionError{Err: fmt.Errorf("%s: status %d", service, resp.StatusCode)}
	case http.StatusUnprocessableEntity:
		if service == "speech-to-text" {
			return nil, &voice.NoSpeechError{}
		}
	}
	return nil, &voice.UpstreamError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
}
