package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Factory builds oracle instances from model definitions.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a provider factory with a shared HTTP client.
func NewFactory() *Factory {
	return &Factory{}
}

// ForModel implements ports.OracleFactory.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Oracle, error) {
	provider := strings.ToLower(model.Provider)
	if provider == "" {
		provider = guessProvider(model)
	}

	switch provider {
	case "ollama":
		return newHTTPOracle("ollama", model, f.httpClient, ollamaAdapter()), nil
	case "openai":
		return newHTTPOracle("openai", model, f.httpClient, openaiAdapter()), nil
	case "anthropic":
		return newHTTPOracle("anthropic", model, f.httpClient, anthropicAdapter()), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q for model %s", model.Provider, model.Name)
	}
}

func guessProvider(model domain.ModelDefinition) string {
	endpoint := strings.ToLower(model.Endpoint)
	switch {
	case strings.Contains(endpoint, "anthropic"):
		return "anthropic"
	case strings.Contains(endpoint, "openai"):
		return "openai"
	case strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return "ollama"
	default:
		return ""
	}
}

var _ ports.OracleFactory = (*Factory)(nil)
