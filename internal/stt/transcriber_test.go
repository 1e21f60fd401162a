package stt

import (
	"context"
	"testing"
)

func TestStubTranscriber(t *testing.T) {
	t.Parallel()

	result, err := NewStubTranscriber().Transcribe(context.Background(), "audio/abc")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected placeholder text")
	}
	if result.Confidence != 0.65 {
		t.Fatalf("confidence = %v, want 0.65", result.Confidence)
	}
}

func TestStubTranscriberHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStubTranscriber().Transcribe(ctx, "audio/abc"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
