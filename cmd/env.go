package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/enrich"
	"github.com/sells-group/contact-enrich/internal/imagestore"
	"github.com/sells-group/contact-enrich/internal/lookup"
	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/internal/resilience"
	"github.com/sells-group/contact-enrich/internal/review"
	"github.com/sells-group/contact-enrich/internal/sheetcache"
	"github.com/sells-group/contact-enrich/internal/sheets"
	"github.com/sells-group/contact-enrich/internal/store"
	"github.com/sells-group/contact-enrich/internal/stream"
	"github.com/sells-group/contact-enrich/pkg/apify"
	"github.com/sells-group/contact-enrich/pkg/gsheets"
	"github.com/sells-group/contact-enrich/pkg/jina"
	"github.com/sells-group/contact-enrich/pkg/proxycurl"
)

// sheetBackend is a tabular source that can also list its folder.
type sheetBackend interface {
	sheets.Provider
	sheets.FolderLister
}

// appEnv holds the collaborators shared by the commands. Fields a mode
// does not need are nil.
type appEnv struct {
	Store    store.Store
	Cache    *sheetcache.Cache
	Enricher *enrich.Enricher
	Catalog  *enrich.Catalog
	Streams  *stream.Registry
	Review   *review.Service
	Images   *imagestore.Store
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the config for mode and builds everything the mode
// needs. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &appEnv{Store: st}

	if mode == "contacts" {
		return env, nil
	}

	backend, err := initSheets()
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Cache = sheetcache.New(backend,
		sheetcache.WithTTL(time.Duration(cfg.Sheets.CacheTTLMinutes)*time.Minute),
		sheetcache.WithPrimarySheet(cfg.Sheets.PrimarySheet),
	)

	if err := ensureImages(env); err != nil {
		env.Close()
		return nil, err
	}
	env.Review = review.NewService(env.Cache, env.Images, cfg.Sheets.PrimarySheet)

	if mode == "save" {
		return env, nil
	}

	var extra model.PqKeywords
	if cfg.Pipeline.KeywordsFile != "" {
		extra, err = enrich.LoadKeywordsFile(cfg.Pipeline.KeywordsFile)
		if err != nil {
			env.Close()
			return nil, err
		}
	}

	deps := enrich.Deps{
		Sheets: env.Cache,
		Store:  st,
	}
	if mode != "sheets" {
		svc, images, err := initLookups(env.Images)
		if err != nil {
			env.Close()
			return nil, err
		}
		deps.Search = svc
		deps.Profiles = svc
		deps.Images = images
	}

	env.Enricher = enrich.New(deps, enrich.Options{
		PrimarySheet:   cfg.Sheets.PrimarySheet,
		AuxSuffix:      cfg.Sheets.AuxSuffix,
		Range:          cfg.Sheets.Range,
		RowConcurrency: cfg.Pipeline.RowConcurrency,
		ExtraKeywords:  extra,
	})
	env.Catalog = enrich.NewCatalog(backend, cfg.Sheets.FolderID, env.Enricher)

	enricher := env.Enricher
	env.Streams = stream.NewRegistry(func(spreadsheetID string) stream.Source {
		return enricher.Orchestrator(spreadsheetID)
	}, stream.Config{
		SmallBatchSize:      cfg.Pipeline.SmallBatchSize,
		LargeBatchThreshold: cfg.Pipeline.LargeBatchThreshold,
		IdleTTL:             time.Duration(cfg.Pipeline.StreamIdleMinutes) * time.Minute,
	})

	zap.L().Debug("environment ready",
		zap.String("mode", mode),
		zap.String("store", cfg.Store.Driver),
		zap.String("sheets", cfg.Sheets.Provider),
		zap.String("search", cfg.Search.Provider),
	)
	return env, nil
}

// initSheets builds the configured tabular source.
func initSheets() (sheetBackend, error) {
	switch cfg.Sheets.Provider {
	case "google":
		client := gsheets.NewClient(cfg.Sheets.AccessToken,
			gsheets.WithSheetsBaseURL(cfg.Sheets.SheetsBaseURL),
			gsheets.WithDriveBaseURL(cfg.Sheets.DriveBaseURL),
		)
		return sheets.NewGoogleProvider(client), nil
	case "workbook":
		return sheets.NewWorkbookProvider(cfg.Sheets.WorkbookDir), nil
	default:
		return nil, eris.Errorf("unsupported sheets provider: %s", cfg.Sheets.Provider)
	}
}

func ensureImages(env *appEnv) error {
	imgs, err := imagestore.New(cfg.Images.Dir, cfg.Images.URLPrefix)
	if err != nil {
		return eris.Wrap(err, "init image store")
	}
	env.Images = imgs
	return nil
}

// initSearch builds the configured search backend.
func initSearch() (lookup.SearchBackend, error) {
	switch cfg.Search.Provider {
	case "apify":
		opts := []apify.Option{apify.WithBaseURL(cfg.Apify.BaseURL)}
		if cfg.Apify.ActorID != "" {
			opts = append(opts, apify.WithActorID(cfg.Apify.ActorID))
		}
		return lookup.NewApifySearch(apify.NewClient(cfg.Apify.Token, opts...)), nil
	case "jina":
		var opts []jina.Option
		if cfg.Jina.SearchBaseURL != "" {
			opts = append(opts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
		}
		return lookup.NewJinaSearch(jina.NewClient(cfg.Jina.Key, opts...)), nil
	default:
		return nil, eris.Errorf("unsupported search provider: %s", cfg.Search.Provider)
	}
}

// initLookups builds the guarded search, profile and image collaborators.
// Each provider gets its own guard.
func initLookups(imgs *imagestore.Store) (*lookup.Service, *lookup.GuardedImages, error) {
	backend, err := initSearch()
	if err != nil {
		return nil, nil, err
	}

	searchGuard := resilience.NewGuard(cfg.Search.Provider, resilience.GuardConfig{
		MaxConcurrent:     cfg.Search.MaxConcurrent,
		RequestsPerSecond: cfg.Search.RequestsPerSecond,
		Breaker:           resilience.DefaultBreakerConfig(),
	})
	profileGuard := resilience.NewGuard("proxycurl", resilience.GuardConfig{
		MaxConcurrent:     cfg.Proxycurl.MaxConcurrent,
		RequestsPerSecond: cfg.Proxycurl.RequestsPerSecond,
		Breaker:           resilience.DefaultBreakerConfig(),
	})
	imageGuard := resilience.NewGuard("images", resilience.GuardConfig{
		MaxConcurrent: cfg.Images.MaxConcurrent,
		Breaker:       resilience.DefaultBreakerConfig(),
	})

	profiles := proxycurl.NewClient(cfg.Proxycurl.Key, proxycurl.WithBaseURL(cfg.Proxycurl.BaseURL))
	svc := lookup.NewService(backend, profiles, searchGuard, profileGuard, lookup.Config{
		MaxResults:      cfg.Search.MaxResults,
		AboutMaxResults: cfg.Search.AboutMaxResults,
		RecencyDays:     cfg.Search.RecencyDays,
	})
	return svc, lookup.NewGuardedImages(imgs, imageGuard), nil
}
