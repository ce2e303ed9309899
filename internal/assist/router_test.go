package assist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/finedu/classroom/internal/assist"
)

func TestRouter_SingleProvider(t *testing.T) {
	router := assist.NewRouter()
	mock := assist.NewMockProvider("Hello!")
	router.Register("gemini", mock)

	resp, err := router.Complete(context.Background(), assist.Request{
		Messages: []assist.Message{{Role: "user", Content: "hi"}},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Hello!" {
		t.Errorf("Content = %q, want %q", resp.Content, "Hello!")
	}
}

func TestRouter_Fallback(t *testing.T) {
	router := assist.NewRouter()

	failing := &assist.MockProvider{Err: errors.New("rate limited")}
	fallback := assist.NewMockProvider("Fallback response")

	router.Register("gemini", failing)
	router.Register("backup", fallback)

	resp, err := router.Complete(context.Background(), assist.Request{
		Messages: []assist.Message{{Role: "user", Content: "hi"}},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Fallback response" {
		t.Errorf("Content = %q, want %q", resp.Content, "Fallback response")
	}
}

func TestRouter_AllProvidersFail(t *testing.T) {
	router := assist.NewRouter()

	router.Register("gemini", &assist.MockProvider{Err: errors.New("fail 1")})
	router.Register("backup", &assist.MockProvider{Err: errors.New("fail 2")})

	_, err := router.Complete(context.Background(), assist.Request{
		Messages: []assist.Message{{Role: "user", Content: "hi"}},
	})

	if err == nil {
		t.Fatal("Complete() should return error when all providers fail")
	}
}

func TestRouter_NoProviders(t *testing.T) {
	router := assist.NewRouter()

	_, err := router.Complete(context.Background(), assist.Request{
		Messages: []assist.Message{{Role: "user", Content: "hi"}},
	})

	if err == nil {
		t.Fatal("Complete() should return error with no providers")
	}
}

func TestRouter_HasProvider(t *testing.T) {
	router := assist.NewRouter()
	if router.HasProvider() {
		t.Error("HasProvider() should be false with no providers")
	}

	router.Register("gemini", assist.NewMockProvider("x"))
	if !router.HasProvider() {
		t.Error("HasProvider() should be true after Register()")
	}
}
