package llm

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// AzureProvider targets an Azure OpenAI deployment. Azure speaks the OpenAI
// chat protocol, so request building and error mapping are shared with
// OpenAIProvider; only URL routing and auth differ.
type AzureProvider struct {
	*OpenAIProvider
	deployment string
}

// NewAzureProvider creates a provider bound to one Azure deployment.
func NewAzureProvider(cfg AzureConfig) (*AzureProvider, error) {
	switch {
	case cfg.APIKey == "":
		return nil, fmt.Errorf("azure API key is required")
	case cfg.Endpoint == "":
		return nil, fmt.Errorf("azure endpoint is required")
	case cfg.Deployment == "":
		return nil, fmt.Errorf("azure deployment is required")
	}

	config := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		config.APIVersion = cfg.APIVersion
	}
	deployment := cfg.Deployment
	config.AzureModelMapperFunc = func(string) string { return deployment }

	model := cfg.Model
	if model == "" {
		model = deployment
	}

	return &AzureProvider{
		OpenAIProvider: &OpenAIProvider{
			client: openai.NewClientWithConfig(config),
			model:  model,
		},
		deployment: deployment,
	}, nil
}

// Deployment returns the Azure deployment name requests are routed to.
func (p *AzureProvider) Deployment() string {
	return p.deployment
}
