// Package assistant answers a single customer query end to end.
//
// A Pipeline runs the stages of a chat request strictly in order:
//
//  1. input resolution (audio wins over text; neither is ErrNoInput)
//  2. normalization to English: transcription for audio, language
//     identification plus translation for text
//  3. retrieval of knowledge-base passages for the English text
//  4. answer generation from a grounded prompt
//  5. translation of the answer back to the caller's language
//  6. best-effort speech synthesis
//
// Failures in steps 1 and 2 abort the request. Every later stage degrades to a
// fixed fallback value and the request still succeeds; the stages that fell
// back are listed in core.PipelineState.Degraded.
package assistant
