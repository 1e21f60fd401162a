package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"

	"relay/internal/domain"
)

func TestPushNotifierSendSuccess(t *testing.T) {
	t.Parallel()

	var gotBody pushRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n, err := NewPushNotifier(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewPushNotifier() error = %v", err)
	}

	transcript := "assembly at nine"
	recipient := domain.Contact{ID: "c1", Name: "Head of Science", Email: "hod@school.example"}
	message := domain.VoiceMessage{
		ID:         "m1",
		Priority:   domain.PriorityUrgent,
		AudioURL:   "https://files.example/audio/m1.m4a",
		Transcript: &transcript,
	}

	if err := n.Send(context.Background(), recipient, message); err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}

	if gotBody.RecipientID != "c1" {
		t.Fatalf("recipientId = %q, want c1", gotBody.RecipientID)
	}
	if gotBody.Text != transcript {
		t.Fatalf("text = %q, want %q", gotBody.Text, transcript)
	}
	if gotBody.Priority != "urgent" {
		t.Fatalf("priority = %q, want urgent", gotBody.Priority)
	}
}

func TestPushNotifierSendTransientOnServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n, err := NewPushNotifier(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewPushNotifier() error = %v", err)
	}

	err = n.Send(context.Background(), domain.Contact{ID: "c1"}, domain.VoiceMessage{ID: "m1", Priority: domain.PriorityNormal})
	if err == nil {
		t.Fatal("Send() expected error, got nil")
	}

	var notifierErr *NotifierError
	if !errors.As(err, &notifierErr) {
		t.Fatalf("error = %T, want *NotifierError", err)
	}
	if !notifierErr.Transient {
		t.Fatal("503 should be classified as transient")
	}
	if !IsTransient(err) {
		t.Fatal("IsTransient() should be true for 503")
	}
}

func TestPushNotifierSendPermanentOnClientError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad recipient", http.StatusBadRequest)
	}))
	defer server.Close()

	n, err := NewPushNotifier(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewPushNotifier() error = %v", err)
	}

	err = n.Send(context.Background(), domain.Contact{ID: "c1"}, domain.VoiceMessage{ID: "m1", Priority: domain.PriorityNormal})
	if err == nil {
		t.Fatal("Send() expected error, got nil")
	}
	if IsTransient(err) {
		t.Fatal("400 should be classified as permanent")
	}
}

func TestPushNotifierSendTimeoutIsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resty.New()
	client.SetTimeout(20 * time.Millisecond)

	n, err := NewPushNotifierWithClient(server.URL, client)
	if err != nil {
		t.Fatalf("NewPushNotifierWithClient() error = %v", err)
	}

	err = n.Send(context.Background(), domain.Contact{ID: "c1"}, domain.VoiceMessage{ID: "m1", Priority: domain.PriorityNormal})
	if err == nil {
		t.Fatal("Send() expected timeout error, got nil")
	}
	if !IsTransient(err) {
		t.Fatalf("timeout should be transient, got %v", err)
	}
}

func TestNewPushNotifierValidatesEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewPushNotifier("", time.Second); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	if _, err := NewPushNotifier("not a url", time.Second); err == nil {
		t.Fatal("expected error for invalid endpoint")
	}
}
