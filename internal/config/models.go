package config

// EngineConfig represents the core engine configuration
type EngineConfig struct {
	Timezone      string
	ExtraKeywords []string
}

// ClassifierConfig selects the classification strategy
type ClassifierConfig struct {
	Mode string // "rules" or "llm"
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// CalendarConfig represents the Google Calendar collaborator configuration
type CalendarConfig struct {
	Enabled         bool
	CredentialsFile string
	TokenFile       string
	CalendarID      string
}

// ServerConfig represents the SMTP ingestion server configuration
type ServerConfig struct {
	ListenAddress   string
	Domain          string
	MaxMessageBytes int
}

// GetEngine returns the engine configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		Timezone:      c.GetString("engine.timezone"),
		ExtraKeywords: c.GetStringSlice("engine.extra_keywords"),
	}
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Mode: c.GetString("classifier.mode"),
	}
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetCalendar returns the calendar collaborator configuration
func (c *Config) GetCalendar() CalendarConfig {
	return CalendarConfig{
		Enabled:         c.GetBool("calendar.enabled"),
		CredentialsFile: c.GetString("calendar.credentials_file"),
		TokenFile:       c.GetString("calendar.token_file"),
		CalendarID:      c.GetString("calendar.calendar_id"),
	}
}

// GetServer returns the ingestion server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		Domain:          c.GetString("server.domain"),
		MaxMessageBytes: c.GetInt("server.max_message_bytes"),
	}
}
