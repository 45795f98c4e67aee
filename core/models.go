package core

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

const (
	// DefaultCategory is assigned to knowledge documents that do not name one.
	DefaultCategory = "general"

	// EnglishLanguageCode is the language the knowledge base and the answer
	// generator work in. Inputs are normalized to it and answers translated from it.
	EnglishLanguageCode = "en-IN"
)

// ID is a 64-bit content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PointID identifies a point in a vector store collection.
// Exactly one of Num or UUID is meaningful: UUID when non-empty, Num otherwise.
type PointID struct {
	Num  uint64
	UUID string
}

// NumericPointID returns a numeric point ID.
func NumericPointID(n uint64) PointID {
	return PointID{Num: n}
}

// PointIDFromString maps a source document identifier to a point ID.
//
// UUID strings become UUID point IDs (canonical lower-case form), decimal
// strings become numeric point IDs and anything else is hashed with
// IDFromContent. The mapping is deterministic so re-ingesting the same corpus
// yields the same point IDs.
func PointIDFromString(s string) PointID {
	s = strings.TrimSpace(s)
	if u, err := uuid.Parse(s); err == nil {
		return PointID{UUID: u.String()}
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return PointID{Num: n}
	}
	return PointID{Num: uint64(IDFromContent(s))}
}

// IsUUID reports whether the ID is a UUID point ID.
func (p PointID) IsUUID() bool {
	return p.UUID != ""
}

// String returns a stable textual form, "u:<uuid>" or "n:<number>".
func (p PointID) String() string {
	if p.IsUUID() {
		return "u:" + p.UUID
	}
	return "n:" + strconv.FormatUint(p.Num, 10)
}

// KnowledgeDocument is a single entry of the banking knowledge corpus.
type KnowledgeDocument struct {
	ID       PointID
	SourceID string // identifier as written in the corpus file
	Text     string
	Category string
}

// AudioInput is an uploaded audio clip with its client-supplied metadata.
type AudioInput struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ChatRequest is a single customer query. Exactly one of Text or Audio is expected;
// when both are present the audio wins.
type ChatRequest struct {
	Text  string
	Audio *AudioInput
}

// HasAudio reports whether the request carries an audio clip.
func (r *ChatRequest) HasAudio() bool {
	return r != nil && r.Audio != nil && len(r.Audio.Data) > 0
}

// HasText reports whether the request carries typed text.
func (r *ChatRequest) HasText() bool {
	return r != nil && r.Text != ""
}

// ChatResponse is the JSON body returned to chat clients.
type ChatResponse struct {
	UserMessageText string  `json:"user_message_text"`
	ResponseText    string  `json:"response_text"`
	ResponseAudio   *string `json:"response_audio"`
}

// RetrievedPassage is a knowledge-base passage returned by similarity search.
type RetrievedPassage struct {
	Text  string
	Rank  int // 1-based, 1 is the most similar
	Score float32
}

// PassageTexts returns the texts of passages in rank order.
func PassageTexts(passages []RetrievedPassage) []string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return texts
}

// PipelineState carries the values produced by each stage of a single chat request.
// It is created per request and discarded once the response is written.
type PipelineState struct {
	RawUserText     string
	NormalizedText  string // English text sent to retrieval and generation
	LanguageCode    string
	Passages        []RetrievedPassage
	EnglishAnswer   string
	LocalizedAnswer string
	Audio           *string // base64-encoded audio, nil when synthesis produced nothing

	// Degraded lists the stages that fell back instead of succeeding.
	Degraded []string
}

// SetLanguage records the detected input language. Only the first non-empty
// code is kept; later calls return false and leave the state untouched.
func (s *PipelineState) SetLanguage(code string) bool {
	if s.LanguageCode != "" || code == "" {
		return false
	}
	s.LanguageCode = code
	return true
}

// MarkDegraded records that a stage fell back.
func (s *PipelineState) MarkDegraded(stage string) {
	s.Degraded = append(s.Degraded, stage)
}

// Response builds the client response from the final state.
func (s *PipelineState) Response() *ChatResponse {
	return &ChatResponse{
		UserMessageText: s.RawUserText,
		ResponseText:    s.LocalizedAnswer,
		ResponseAudio:   s.Audio,
	}
}
