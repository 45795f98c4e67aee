// Package sarvam is a client for the Sarvam AI speech and translation APIs.
package sarvam

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/speech"
)

const (
	subscriptionKeyHeader = "api-subscription-key"

	pathSpeechToTextTranslate = "/speech-to-text-translate"
	pathTextLID               = "/text-lid"
	pathTranslate             = "/translate"
	pathTextToSpeech          = "/text-to-speech"

	defaultAudioFilename    = "audio.wav"
	defaultAudioContentType = "application/octet-stream"

	// errorBodyLimit caps how much of a failed response is kept in APIError.
	errorBodyLimit = 4096
)

// APIError is returned when Sarvam answers with a non-2xx status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sarvam %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

type transcribeResponse struct {
	Transcript   string  `json:"transcript"`
	LanguageCode *string `json:"language_code"`
}

type identifyRequest struct {
	Input string `json:"input"`
}

type identifyResponse struct {
	LanguageCode *string `json:"language_code"`
}

type translateRequest struct {
	Input              string `json:"input"`
	SourceLanguageCode string `json:"source_language_code"`
	TargetLanguageCode string `json:"target_language_code"`
	Model              string `json:"model"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

type synthesizeRequest struct {
	Inputs             []string `json:"inputs"`
	TargetLanguageCode string   `json:"target_language_code"`
	Speaker            string   `json:"speaker"`
	Model              string   `json:"model"`
	SpeakerGender      string   `json:"speaker_gender,omitempty"`
}

type synthesizeResponse struct {
	Audios []string `json:"audios"`
}

// Client calls the Sarvam REST API. It is safe for concurrent use.
type Client struct {
	config *Config
	http   *http.Client
	logger *slog.Logger
}

var _ speech.Service = (*Client)(nil)

// NewClient creates a client from config. The config is normalized and validated.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		config: config,
		http:   httpClient,
		logger: slog.Default().With("component", "sarvam"),
	}, nil
}

// Close drops idle keep-alive connections to the API. In-flight calls are unaffected.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Transcribe sends the clip to speech-to-text-translate, which returns an
// English transcript along with the spoken language.
func (c *Client) Transcribe(ctx context.Context, audio *core.AudioInput) (*speech.Transcription, error) {
	if audio == nil || len(audio.Data) == 0 {
		return nil, fmt.Errorf("transcribe: %w", core.ErrNoInput)
	}

	filename := audio.Filename
	if filename == "" {
		filename = defaultAudioFilename
	}
	contentType := audio.ContentType
	if contentType == "" {
		contentType = defaultAudioContentType
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, err
	}
	if err := w.WriteField("model", c.config.ASRModel); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	c.logger.Debug("transcribing audio", "filename", filename, "bytes", len(audio.Data))

	var resp transcribeResponse
	if err := c.do(ctx, pathSpeechToTextTranslate, w.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}

	result := &speech.Transcription{Transcript: resp.Transcript}
	if resp.LanguageCode != nil {
		result.LanguageCode = *resp.LanguageCode
	}
	c.logger.Debug("transcribed audio", "language", result.LanguageCode, "length", len(result.Transcript))
	return result, nil
}

// IdentifyLanguage returns the BCP-47 style code Sarvam detects for text.
func (c *Client) IdentifyLanguage(ctx context.Context, text string) (string, error) {
	var resp identifyResponse
	if err := c.postJSON(ctx, pathTextLID, identifyRequest{Input: text}, &resp); err != nil {
		return "", err
	}
	if resp.LanguageCode == nil || *resp.LanguageCode == "" {
		return "", fmt.Errorf("sarvam %s: no language code in response", pathTextLID)
	}
	return *resp.LanguageCode, nil
}

// Translate always calls the API; callers skip it when source and target match.
func (c *Client) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	req := translateRequest{
		Input:              text,
		SourceLanguageCode: sourceLanguage,
		TargetLanguageCode: targetLanguage,
		Model:              c.config.TranslateModel,
	}
	var resp translateResponse
	if err := c.postJSON(ctx, pathTranslate, req, &resp); err != nil {
		return "", err
	}
	return resp.TranslatedText, nil
}

// Synthesize wraps text in SSML with a trailing pause and returns the first
// base64 audio clip. It returns speech.ErrNoAudio when none came back.
func (c *Client) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	req := synthesizeRequest{
		Inputs:             []string{ssml(text)},
		TargetLanguageCode: languageCode,
		Speaker:            c.config.Speaker,
		Model:              c.config.TTSModel,
		SpeakerGender:      c.config.SpeakerGender,
	}
	var resp synthesizeResponse
	if err := c.postJSON(ctx, pathTextToSpeech, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Audios) == 0 || resp.Audios[0] == "" {
		return "", speech.ErrNoAudio
	}
	return resp.Audios[0], nil
}

func ssml(text string) string {
	return "<speak>" + text + "<break time='0.5s'/></speak>"
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := sonic.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set(subscriptionKeyHeader, c.config.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sarvam %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sarvam %s: read response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > errorBodyLimit {
			data = data[:errorBodyLimit]
		}
		apiErr := &APIError{Endpoint: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		c.logger.Warn("sarvam request failed", "endpoint", path, "status", resp.StatusCode)
		return apiErr
	}

	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("sarvam %s: decode response: %w", path, err)
	}
	return nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
