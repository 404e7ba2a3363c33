/*
Package cli implements the docguard commands and wires the adapters into the
chat use case.
*/
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/0xcro3dile/docguard/internal/adapters/auditlog"
	"github.com/0xcro3dile/docguard/internal/adapters/filewatcher"
	"github.com/0xcro3dile/docguard/internal/adapters/finder"
	"github.com/0xcro3dile/docguard/internal/adapters/llm"
	"github.com/0xcro3dile/docguard/internal/adapters/loader"
	"github.com/0xcro3dile/docguard/internal/adapters/nlp"
	"github.com/0xcro3dile/docguard/internal/adapters/parser"
	"github.com/0xcro3dile/docguard/internal/adapters/workspace"
	"github.com/0xcro3dile/docguard/internal/config"
	"github.com/0xcro3dile/docguard/internal/domain/ports"
	"github.com/0xcro3dile/docguard/internal/domain/usecases"
	"github.com/0xcro3dile/docguard/internal/infrastructure/logging"
)

// app holds the wired use case and everything that must be closed with it.
type app struct {
	cfg     *config.Config
	chat    *usecases.ChatUseCase
	audit   ports.AuditStore
	watcher *filewatcher.RootWatcher
}

// newApp loads configuration and builds the dependency graph.
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Log.Level); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	if a.audit, err = newAuditStore(cfg); err != nil {
		return nil, err
	}

	extractor := loader.NewExtractor(cfg.Extraction.MaxChars, pdfFallback(ctx, cfg.Extraction.PDFServiceURL))
	exts := extractor.SupportedExtensions()

	var opts []finder.Option
	var files *finder.Finder
	if cfg.Search.Watch {
		a.watcher = filewatcher.NewRootWatcher(ctx, exts, finder.SkipDir, func(path string) {
			files.Invalidate(path)
		})
		opts = append(opts, finder.WithCache(a.watcher.Ensure))
	}
	files = finder.NewFinder(exts, opts...)

	splitter := nlp.Load(cfg.NLP.SentenceModel)
	local := usecases.NewLocalPipeline(workspace.NewGuard(), files, extractor, splitter, cfg.Search.Limit)

	a.chat = usecases.NewChatUseCase(newKnowledge(cfg), local, a.audit, uuid.NewString)
	return a, nil
}

// pdfFallback returns the PDF text service when it answers its health check.
// Image-only PDFs then fail extraction instead of waiting on a dead service.
func pdfFallback(ctx context.Context, serviceURL string) ports.DocumentParser {
	svc := parser.NewPDFServiceParser(serviceURL)
	if err := svc.Ping(ctx); err != nil {
		log.Printf("[WARN] PDF text service disabled: %v", err)
		return nil
	}
	log.Printf("[INFO] PDF text service available at %s", serviceURL)
	return svc
}

// Close releases the watcher and the audit store.
func (a *app) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			log.Printf("[WARN] closing watchers: %v", err)
		}
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			log.Printf("[WARN] closing audit store: %v", err)
		}
	}
}

// newKnowledge returns nil when no provider can be reached, so requests record
// missing_credential without sending anything.
func newKnowledge(cfg *config.Config) ports.KnowledgeService {
	switch cfg.Cloud.Provider {
	case config.ProviderOllama:
		baseURL, model := cfg.Cloud.BaseURL, cfg.Cloud.Model
		// OpenAI defaults left in place mean the provider was switched alone.
		if baseURL == llm.DefaultOpenAIBaseURL {
			baseURL = llm.DefaultOllamaURL
		}
		if model == llm.DefaultOpenAIModel {
			model = llm.DefaultOllamaModel
		}
		log.Printf("[INFO] knowledge provider: ollama model=%s", model)
		return llm.NewOllamaClient(baseURL, model, cfg.Timeout(), cfg.Cloud.RequestsPerMinute)
	default:
		if cfg.Cloud.APIKey == "" {
			log.Printf("[INFO] knowledge provider: none (no API key)")
			return nil
		}
		log.Printf("[INFO] knowledge provider: openai model=%s", cfg.Cloud.Model)
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:           cfg.Cloud.BaseURL,
			Model:             cfg.Cloud.Model,
			APIKey:            cfg.Cloud.APIKey,
			Timeout:           cfg.Timeout(),
			RequestsPerMinute: cfg.Cloud.RequestsPerMinute,
		})
	}
}

func newAuditStore(cfg *config.Config) (ports.AuditStore, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	path := cfg.AuditPath()
	if path == "" {
		return auditlog.NewMemoryStore(0), nil
	}
	store, err := auditlog.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening audit store: %w", err)
	}
	return store, nil
}
