// ABOUTME: Tests for the OpenAI-compatible client against a fake HTTP server
// ABOUTME: Covers request shape, retries, empty choices and embeddings ordering
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/wodsmith/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOpenAIClientWithConfig(&ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/v1",
		ChatModel:  "llama-3.3-70b-versatile",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClientWithConfig() error = %v", err)
	}
	return client
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	body, _ := json.Marshal(map[string]any{
		"id":      "c1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "llama-3.3-70b-versatile",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	_, _ = w.Write(body)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestComplete_SendsPrompt(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCompletion(w, "MENSAJE: hola JSON: {}")
	}, 0)

	out, err := client.Complete(context.Background(), CompletionRequest{
		System: "sistema",
		Messages: []models.Message{
			models.UserMessage("antes"),
			models.AssistantMessage("respuesta"),
			models.UserMessage("pedido"),
		},
		MaxTokens:   8000,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "MENSAJE: hola JSON: {}" {
		t.Errorf("Complete() = %q", out)
	}

	if got.Model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %s", got.Model)
	}
	if got.MaxTokens != 8000 {
		t.Errorf("max_tokens = %d, want 8000", got.MaxTokens)
	}
	if len(got.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(got.Messages))
	}
	wantRoles := []string{"system", "user", "assistant", "user"}
	for i, role := range wantRoles {
		if got.Messages[i].Role != role {
			t.Errorf("messages[%d].role = %s, want %s", i, got.Messages[i].Role, role)
		}
	}
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
			return
		}
		writeCompletion(w, "ok")
	}, 1)

	out, err := client.Complete(context.Background(), CompletionRequest{Messages: []models.Message{models.UserMessage("hi")}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "ok" {
		t.Errorf("Complete() = %q, want ok", out)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestComplete_ErrorWithoutRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	}, 0)

	if _, err := client.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("Complete() expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}, 0)

	_, err := client.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("Complete() error = %v, want ErrEmptyCompletion", err)
	}
}

func TestEmbed_OrdersByIndex(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		]}`)
	}, 0)

	vectors, err := client.Embed(context.Background(), []string{"primero", "segundo"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("len = %d, want 2", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Errorf("vectors not ordered by index: %v", vectors)
	}
}

func TestEmbed_NoInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}, 0)

	if _, err := client.Embed(context.Background(), nil); err == nil {
		t.Error("Embed(nil) expected error")
	}
}
