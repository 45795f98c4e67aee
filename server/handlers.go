package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/poiesic/banktalk/assistant"
	"github.com/poiesic/banktalk/core"
)

const (
	fieldTextInput = "text_input"
	fieldAudioFile = "audio_file"

	// multipartMemory is how much of a multipart body is kept in memory
	// before spilling to temporary files.
	multipartMemory = 8 << 20

	greeting        = "Hello, Banking Chatbot Backend!"
	noInputDetail   = "No text or audio input provided."
	audioFailPrefix = "Failed to process audio: "
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": greeting})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseChatRequest(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		s.logger.Warn("invalid chat form", "err", err)
		s.writeError(w, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}

	resp, err := s.chatter.Chat(r.Context(), req)
	if err != nil {
		var te *assistant.TranscriptionError
		switch {
		case errors.Is(err, core.ErrNoInput):
			s.writeError(w, http.StatusBadRequest, noInputDetail)
		case errors.As(err, &te):
			s.writeError(w, http.StatusInternalServerError, audioFailPrefix+te.Err.Error())
		default:
			s.logger.Error("chat failed", "err", err)
			s.writeError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// parseChatRequest reads text_input and audio_file from a multipart or
// urlencoded form. Missing fields are left empty.
func (s *Server) parseChatRequest(w http.ResponseWriter, r *http.Request) (*core.ChatRequest, error) {
	if r.ContentLength > s.maxUploadBytes {
		return nil, &http.MaxBytesError{Limit: s.maxUploadBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req := &core.ChatRequest{Text: r.PostFormValue(fieldTextInput)}

	if r.MultipartForm == nil {
		return req, nil
	}
	file, header, err := r.FormFile(fieldAudioFile)
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	req.Audio = &core.AudioInput{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	return req, nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "err", err)
		http.Error(w, `{"detail":"Internal server error."}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("failed to write response", "err", err)
	}
}
