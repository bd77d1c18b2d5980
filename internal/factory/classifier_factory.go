package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arjun/deadline-tracker/internal/adapters/bedrock"
	"github.com/arjun/deadline-tracker/internal/adapters/gemini"
	"github.com/arjun/deadline-tracker/internal/adapters/openai"
	"github.com/arjun/deadline-tracker/internal/config"
	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/utils"
)

// ClassifierFactory creates classifiers based on configuration
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates the primary classifier based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	mode := f.cfg.GetClassifier().Mode

	switch mode {
	case "", "rules":
		return f.CreateRuleClassifier(), nil
	case "llm":
		return f.createLLMClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier mode: %s", mode)
	}
}

// CreateRuleClassifier creates a keyword rule classifier. The LLM mode
// also uses one as its fallback when the provider is unreachable.
func (f *ClassifierFactory) CreateRuleClassifier() *core.RuleClassifier {
	return core.NewRuleClassifier(f.logger, f.cfg.GetEngine().ExtraKeywords)
}

func (f *ClassifierFactory) createLLMClassifier() (core.Classifier, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "bedrock":
		client, err := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		client, err := openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
