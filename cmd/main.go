package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"site-assistant/handler"
	"site-assistant/internal/chain"
	"site-assistant/internal/config"
	"site-assistant/internal/domain"
	"site-assistant/internal/integrations/gemini"
	"site-assistant/internal/integrations/openai"
	"site-assistant/internal/integrations/paramstore"
	"site-assistant/internal/integrations/resend"
	"site-assistant/internal/knowledge"
	"site-assistant/internal/repository"
	"site-assistant/internal/usecase"
	applog "site-assistant/pkg/log"
)

func main() {
	ctx := context.Background()

	// Local runs read a .env file; in Lambda it is absent.
	_ = godotenv.Load()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		bootLogger := applog.New(os.Stderr, false)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}
	ctx = applog.NewContextWithLogger(ctx, cfg.Debug)
	logger := applog.FromCtx(ctx)

	site, err := knowledge.Load(cfg.SiteKnowledgePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load site knowledge")
	}

	// ---- AWS SDK config (only when an AWS-backed feature is enabled) ----
	var awsCfg *aws.Config
	if cfg.ParamPrefix != "" || cfg.LeadsTable != "" {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load AWS config")
		}
		awsCfg = &loaded
	}

	if cfg.ParamPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(*awsCfg))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create SSM client")
		}
		cfg.ResolveCredentials(ctx, ssmClient)
	}

	// ---- Provider chain ----
	orchestrator, err := chain.New(
		knowledge.NewResponder(site),
		buildLinks(ctx, cfg, site),
		chain.WithAttemptTimeout(cfg.ProviderTimeout),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create provider chain")
	}

	chatService, err := usecase.NewChatService(orchestrator)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create chat service")
	}

	// ---- Contact action ----
	var contactService handler.ContactUseCase
	if cfg.LeadsTable != "" {
		contactService = buildContactService(ctx, cfg, *awsCfg)
	}

	h, err := handler.NewHandler(chatService, contactService)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create handler")
	}

	lambda.StartWithOptions(h.Handle, lambda.WithContext(ctx))
}

func buildLinks(ctx context.Context, cfg *config.Config, site domain.SiteKnowledge) []chain.Link {
	logger := applog.FromCtx(ctx)
	prompt := knowledge.SystemPrompt(site)

	var links []chain.Link
	add := func(provider string, adapter chain.Adapter) {
		priority, ok := cfg.Priority(provider)
		if !ok {
			return
		}
		links = append(links, chain.Link{Adapter: adapter, Priority: priority})
		logger.Info().
			Str("provider", provider).
			Int("priority", priority).
			Bool("configured", adapter.Configured()).
			Msg("provider registered")
	}

	openAI, err := openai.NewOpenAI(cfg.OpenAIAPIKey, prompt)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create OpenAI adapter")
	}
	add(config.ProviderOpenAI, openAI)

	openRouter, err := openai.NewOpenRouter(cfg.OpenRouterAPIKey, prompt, cfg.SiteURL, site.SiteName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create OpenRouter adapter")
	}
	add(config.ProviderOpenRouter, openRouter)

	add(config.ProviderGemini, gemini.NewClient(cfg.GoogleAPIKey, prompt))
	return links
}

func buildContactService(ctx context.Context, cfg *config.Config, awsCfg aws.Config) *usecase.ContactService {
	logger := applog.FromCtx(ctx)

	store, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.LeadsTable)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create inquiry store")
	}

	var notifier usecase.InquiryNotifier
	if cfg.ResendAPIKey != "" {
		mailer, err := resend.NewClient(cfg.ResendAPIKey, cfg.ContactFrom, cfg.ContactTo)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create email client")
		}
		notifier = mailer
	} else {
		logger.Info().Msg("RESEND_API_KEY not set, inquiry emails disabled")
	}

	svc, err := usecase.NewContactService(store, notifier)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create contact service")
	}
	return svc
}
