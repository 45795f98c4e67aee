// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sarvam

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL        = "https://api.sarvam.ai"
	DefaultASRModel       = "saaras:v2.5"
	DefaultTranslateModel = "mayura:v1"
	DefaultTTSModel       = "bulbul:v2"
	DefaultSpeaker        = "anushka"
	DefaultSpeakerGender  = "Female"
	DefaultTimeout        = 60 * time.Second
)

var (
	ErrAPIKeyRequired  = errors.New("sarvam API key required")
	ErrBaseURLRequired = errors.New("sarvam base URL required")
	ErrModelRequired   = errors.New("sarvam model names required")
	ErrSpeakerRequired = errors.New("sarvam speaker required")
)

// Config holds the settings for the Sarvam AI client.
type Config struct {
	BaseURL        string
	APIKey         string
	ASRModel       string
	TranslateModel string
	TTSModel       string
	Speaker        string
	SpeakerGender  string
	Timeout        time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// ConfigOption is a functional option for configuring Config.
type ConfigOption func(*Config)

// WithBaseURL sets the API root, mostly useful for tests.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithAPIKey sets the subscription key sent in the api-subscription-key header.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func WithASRModel(model string) ConfigOption {
	return func(c *Config) {
		c.ASRModel = model
	}
}

func WithTranslateModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranslateModel = model
	}
}

func WithTTSModel(model string) ConfigOption {
	return func(c *Config) {
		c.TTSModel = model
	}
}

// WithSpeaker sets the synthesis voice and its gender.
func WithSpeaker(speaker, gender string) ConfigOption {
	return func(c *Config) {
		c.Speaker = speaker
		c.SpeakerGender = gender
	}
}

func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// DefaultConfig returns the models and voice the assistant ships with.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		ASRModel:       DefaultASRModel,
		TranslateModel: DefaultTranslateModel,
		TTSModel:       DefaultTTSModel,
		Speaker:        DefaultSpeaker,
		SpeakerGender:  DefaultSpeakerGender,
		Timeout:        DefaultTimeout,
	}
}

// NewConfig creates a new Config with the given options applied to defaults.
func NewConfig(opts ...ConfigOption) *Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Normalize trims whitespace and trailing slashes.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrBaseURLRequired
	}
	if c.APIKey == "" {
		return ErrAPIKeyRequired
	}
	if c.ASRModel == "" || c.TranslateModel == "" || c.TTSModel == "" {
		return ErrModelRequired
	}
	if c.Speaker == "" {
		return ErrSpeakerRequired
	}
	return nil
}
