package narrative_fx

import (
	"context"
	"io"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stayflo/internal/config"
	"stayflo/internal/services"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

var Module = fx.Provide(
	ProvideLLMClient,
	ProvideNarrativeService)

// ProvideLLMClient returns nil when the selected provider has no key, in
// which case itineraries carry fallback text.
func ProvideLLMClient(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (utils.LLMJSONClient, error) {
	if !cfg.NarrativeEnabled() {
		log.Warn("Narrative provider disabled, using fallback text", zap.String("provider", cfg.NarrativeProvider))
		return nil, nil
	}

	provider := strings.ToLower(cfg.NarrativeProvider)
	apiKey, model := cfg.OpenAIAPIKey, cfg.OpenAIModel
	if provider == "gemini" {
		apiKey, model = cfg.GeminiAPIKey, cfg.GeminiModel
	}

	log.Info("Initializing narrative client", zap.String("provider", provider), zap.String("model", model))
	client, err := utils.NewLLMJSONClient(context.Background(), provider, apiKey, model)
	if err != nil {
		return nil, err
	}
	if closer, ok := client.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return closer.Close()
			},
		})
	}
	return client, nil
}

func ProvideNarrativeService(client utils.LLMJSONClient, cfg *config.Config, m *metrics.Metrics, log *zap.Logger) services.NarrativeServiceInterface {
	return services.NewNarrativeService(client, cfg.NarrativeTimeout, m, log)
}
