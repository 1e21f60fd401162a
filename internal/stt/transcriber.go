package stt

import "context"

// Result is a transcription outcome.
type Result struct {
	Text       string
	Confidence float64
}

// Transcriber converts stored audio into text with a confidence score.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (Result, error)
}

const (
	stubText       = "Transcription pending review. We've got you covered."
	stubConfidence = 0.65
)

// StubTranscriber returns a fixed placeholder transcript. It stands in until
// a real engine is wired behind the Transcriber port.
type StubTranscriber struct{}

func NewStubTranscriber() *StubTranscriber {
	return &StubTranscriber{}
}

func (s *StubTranscriber) Transcribe(ctx context.Context, audioURL string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return Result{
		Text:       stubText,
		Confidence: stubConfidence,
	}, nil
}
