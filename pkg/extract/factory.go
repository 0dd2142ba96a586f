package extract

import (
	"fmt"
	"time"
)

func NewLeadExtractor(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (LeadExtractor, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return NewOllamaProvider(baseURL, modelName, timeout), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini extractor requires GOOGLE_GEMINI_API_KEY")
		}
		return NewGeminiProvider(apiKey, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported extractor provider: %s", providerType)
	}
}
