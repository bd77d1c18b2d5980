package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arjun/deadline-tracker/internal/config"
	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/factory"
	"github.com/arjun/deadline-tracker/internal/logging"
)

var (
	// Classifier flags
	mode     = flag.String("mode", "rules", "Classifier mode (rules, llm)")
	provider = flag.String("provider", "openai", "LLM provider (bedrock, gemini, openai)")
	keywords = flag.String("keywords", "", "Comma-separated extra keywords for the rule classifier")

	// LLM provider flags
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Engine flags
	timezone = flag.String("timezone", "Asia/Kolkata", "Timezone for deadline resolution")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Build the pipeline: classifier, parser, extractor, guard, builder.
	// Scan runs without a calendar; descriptors are printed, not written.
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	classifierFactory := factory.NewClassifierFactory(cfg, logger, textProcessor)

	classifier, err := classifierFactory.CreateClassifier()
	if err != nil {
		logger.Fatal("Failed to create classifier", zap.Error(err))
	}
	fallback := classifierFactory.CreateRuleClassifier()

	loc, err := time.LoadLocation(cfg.GetEngine().Timezone)
	if err != nil {
		logger.Warn("Invalid timezone, falling back to local",
			zap.String("timezone", cfg.GetEngine().Timezone))
		loc = time.Local
	}
	parser := core.NewDateParser(logger, loc)
	extractor := core.NewDeadlineExtractor(parser, logger)
	guard := core.NewDedupGuard(nil, logger)
	builder := core.NewEventBuilder(cfg.GetEngine().Timezone)
	service := core.NewEngineService(classifier, fallback, extractor, guard, builder, nil, logger)

	// Gather input: positional file arguments, the -file flag, or stdin.
	files := flag.Args()
	if *inputFile != "" {
		files = append([]string{*inputFile}, files...)
	}

	counters := make(map[core.OutcomeStatus]int)
	startTime := time.Now()

	if len(files) == 0 {
		logger.Info("Reading email from stdin")
		result := scanReader(service, logger, bufio.NewReader(os.Stdin), "stdin")
		if result != nil {
			counters[result.Status]++
		}
	} else {
		for _, path := range files {
			f, err := os.Open(path)
			if err != nil {
				logger.Error("Failed to open input file", zap.Error(err), zap.String("file", path))
				continue
			}
			result := scanReader(service, logger, bufio.NewReader(f), path)
			f.Close()
			if result != nil {
				counters[result.Status]++
			}
		}
	}

	// Print batch summary
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Messages scanned: %d\n", len(files)+boolToInt(len(files) == 0))
	fmt.Printf("Events created: %d\n", counters[core.OutcomeCreated])
	fmt.Printf("Irrelevant: %d\n", counters[core.OutcomeIrrelevant])
	fmt.Printf("No deadline: %d\n", counters[core.OutcomeNoDeadline])
	fmt.Printf("Duplicates: %d\n", counters[core.OutcomeDuplicate])
	fmt.Printf("Rejected (past): %d\n", counters[core.OutcomeRejected])
	fmt.Printf("Processing time: %v\n", time.Since(startTime))

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanReader parses one email and runs it through the engine, printing
// the outcome to stdout.
func scanReader(service *core.EngineService, logger *zap.Logger, r io.Reader, name string) *core.ProcessResult {
	parsed, err := mail.ReadMessage(r)
	if err != nil {
		logger.Error("Failed to parse email", zap.Error(err), zap.String("input", name))
		return nil
	}

	sender := parsed.Header.Get("From")
	if addr, err := mail.ParseAddress(sender); err == nil {
		sender = addr.Address
	}

	bodyBytes, err := io.ReadAll(parsed.Body)
	if err != nil {
		logger.Error("Failed to read email body", zap.Error(err), zap.String("input", name))
		return nil
	}

	id := strings.Trim(parsed.Header.Get("Message-ID"), "<> ")
	if id == "" {
		id = uuid.NewString()
	}
	receivedAt := time.Now()
	if date, err := parsed.Header.Date(); err == nil {
		receivedAt = date
	}

	msg := &core.Message{
		ID:         id,
		Subject:    parsed.Header.Get("Subject"),
		Sender:     sender,
		Body:       string(bodyBytes),
		ReceivedAt: receivedAt,
	}

	fmt.Printf("\n=== %s ===\n", name)
	fmt.Printf("From: %s\n", msg.Sender)
	fmt.Printf("Subject: %s\n", msg.Subject)

	result, err := service.ProcessMessage(context.Background(), msg)
	if err != nil {
		logger.Error("Failed to process message", zap.Error(err), zap.String("input", name))
		return nil
	}

	fmt.Printf("Job related: %t\n", result.Classification.IsJobRelated)
	if result.Classification.IsJobRelated {
		fmt.Printf("Category: %s\n", result.Classification.Category)
		fmt.Printf("Urgency: %s\n", result.Classification.Urgency)
		fmt.Printf("Reason: %s\n", result.Classification.Reason)
	}
	if result.Deadline != nil && result.Deadline.HasDeadline {
		fmt.Printf("Deadline: %s", result.Deadline.Date.Format("2006-01-02"))
		if result.Deadline.TimeOfDay != "" {
			fmt.Printf(" %s", result.Deadline.TimeOfDay)
		}
		fmt.Printf(" (%s, from %s)\n", result.Deadline.Type, result.Deadline.Source)
		fmt.Printf("Extracted text: %q\n", result.Deadline.SourceText)
	}
	fmt.Printf("Outcome: %s\n", result.Status)
	if result.Event != nil {
		fmt.Printf("Event title: %s\n", result.Event.Title)
		fmt.Printf("Event start: %s\n", result.Event.Start.Format(time.RFC3339))
		fmt.Printf("Reminders (minutes before): %v\n", result.Event.ReminderOffsetsMinutes)
	}
	return result
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("classifier.mode", *mode)
	v.Set("llm.provider", *provider)

	// Set provider-specific configuration
	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	}

	v.Set("engine.timezone", *timezone)

	// Set extra keywords for the rule classifier
	if *keywords != "" {
		extra := strings.Split(*keywords, ",")
		for i, kw := range extra {
			extra[i] = strings.TrimSpace(kw)
		}
		v.Set("engine.extra_keywords", extra)
	} else {
		v.Set("engine.extra_keywords", []string{})
	}

	return config.NewFromViper(v)
}
