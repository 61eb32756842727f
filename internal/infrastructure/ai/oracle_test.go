package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
)

func TestOllamaOracleQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		messages, _ := req["messages"].([]interface{})
		if len(messages) != 2 {
			t.Errorf("expected system+user messages, got %d", len(messages))
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "run nmap -sV 10.0.0.1"},
		})
	}))
	defer server.Close()

	factory := NewFactory()
	oracle, err := factory.ForModel(domain.ModelDefinition{
		Name:     "local",
		Provider: "ollama",
		Endpoint: server.URL,
		ModelID:  "dolphin-mixtral",
	})
	if err != nil {
		t.Fatalf("ForModel error: %v", err)
	}

	got := oracle.Query(context.Background(), "plan enumeration", "you are a red team lead")
	if got != "run nmap -sV 10.0.0.1" {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestOracleDegradesOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	factory := NewFactory()
	oracle, err := factory.ForModel(domain.ModelDefinition{Provider: "ollama", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("ForModel error: %v", err)
	}

	got := oracle.Query(context.Background(), "anything", "")
	if !strings.HasPrefix(got, "AI Error:") {
		t.Fatalf("expected degraded error text, got %q", got)
	}
}

func TestOracleDegradesOnUnreachableEndpoint(t *testing.T) {
	factory := NewFactory()
	oracle, err := factory.ForModel(domain.ModelDefinition{Provider: "ollama", Endpoint: "http://127.0.0.1:1/api/chat"})
	if err != nil {
		t.Fatalf("ForModel error: %v", err)
	}

	got := oracle.Query(context.Background(), "anything", "")
	if !strings.HasPrefix(got, "AI Error:") {
		t.Fatalf("expected degraded error text, got %q", got)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	factory := NewFactory()
	if _, err := factory.ForModel(domain.ModelDefinition{Provider: "delphi", Endpoint: "http://example.com"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFactoryGuessesProviderFromEndpoint(t *testing.T) {
	factory := NewFactory()
	oracle, err := factory.ForModel(domain.ModelDefinition{Endpoint: "http://localhost:11434/api/chat"})
	if err != nil {
		t.Fatalf("ForModel error: %v", err)
	}
	if oracle.Name() != "ollama" {
		t.Fatalf("expected ollama, got %s", oracle.Name())
	}
}
