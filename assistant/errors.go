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


package assistant

import "errors"

var (
	// ErrSpeechServiceRequired is returned when a speech service is not provided.
	ErrSpeechServiceRequired = errors.New("speech service required")

	// ErrRetrieverRequired is returned when a passage retriever is not provided.
	ErrRetrieverRequired = errors.New("passage retriever required")

	// ErrGeneratorRequired is returned when an answer generator is not provided.
	ErrGeneratorRequired = errors.New("answer generator required")

	// ErrTranscriptionFailed marks failures of the audio transcription stage.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// TranscriptionError wraps the error returned by the transcription service.
// errors.Is(err, ErrTranscriptionFailed) holds for it.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return "transcription failed: " + e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

func (e *TranscriptionError) Is(target error) bool {
	return target == ErrTranscriptionFailed
}
