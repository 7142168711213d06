package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/chat"
	"github.com/aschepis/backscratcher/chessinsight/config"
	"github.com/aschepis/backscratcher/chessinsight/game"
	"github.com/aschepis/backscratcher/chessinsight/insight"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	chesslogger "github.com/aschepis/backscratcher/chessinsight/logger"
	"github.com/aschepis/backscratcher/chessinsight/opponent"
	"github.com/aschepis/backscratcher/chessinsight/settings"
	"github.com/aschepis/backscratcher/chessinsight/ui"
	"github.com/aschepis/backscratcher/chessinsight/ui/tui"
)

type options struct {
	pgnPath  string
	evalPath string
	provider string
	model    string
	key      string
	dbPath   string
	logFile  string
	pretty   bool
	plain    bool
	validate bool
	opponent bool
}

func main() {
	var opts options
	flag.StringVar(&opts.pgnPath, "pgn", "", "PGN file of the game to analyse (required)")
	flag.StringVar(&opts.evalPath, "eval", "", "Engine evaluation of the game as JSON (required unless -validate)")
	flag.StringVar(&opts.provider, "provider", "", "Provider: openai, anthropic, deepseek or ollama")
	flag.StringVar(&opts.model, "model", "", "Model override for the provider")
	flag.StringVar(&opts.key, "key", "", "API key. Defaults to the configured or saved key")
	flag.StringVar(&opts.dbPath, "db", "", "Settings database path")
	flag.StringVar(&opts.logFile, "logfile", "", "Path to log file")
	flag.BoolVar(&opts.pretty, "pretty", false, "Pretty console logs on stderr in -plain mode (not valid with -logfile)")
	flag.BoolVar(&opts.plain, "plain", false, "No terminal UI: print the analysis and read questions from stdin")
	flag.BoolVar(&opts.validate, "validate", false, "Validate the API key, save it and exit")
	flag.BoolVar(&opts.opponent, "opponent", false, "Print an AI move for the final position of the game and exit")
	flag.Parse()

	// Validate that --logfile and --pretty are mutually exclusive
	if opts.logFile != "" && opts.pretty {
		fmt.Fprintf(os.Stderr, "Error: --logfile and --pretty are mutually exclusive\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if err := config.LoadEnvFile(config.GetEnvPath()); err != nil {
		return err
	}
	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile := opts.logFile
	if logFile == "" && !opts.pretty {
		logFile = config.ExpandPath(cfg.LogFile)
	}
	logger, err := chesslogger.InitWithOptions(chesslogger.Options{
		File:    logFile,
		Pretty:  opts.pretty,
		Discard: logFile == "" && !opts.plain,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		dbPath = cfg.Database
	}
	store, err := settings.Open(config.ExpandPath(dbPath), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Settings database unavailable, continuing without saved settings")
		store = nil
	} else {
		defer func() {
			_ = store.Close()
		}()
	}

	providerID, model, credential, err := resolveSelection(ctx, cfg, store, opts)
	if err != nil {
		return err
	}
	logger.Info().Str("provider", providerID).Str("model", model).Msg("Starting chessinsight")

	factory := func(id, model string) (llm.Provider, error) {
		return config.NewProvider(cfg, id, model, logger)
	}
	provider, err := factory(providerID, model)
	if err != nil {
		return err
	}

	if opts.validate {
		return validateKey(ctx, store, provider, credential)
	}

	if opts.pgnPath == "" {
		return errors.New("-pgn is required")
	}
	g, err := game.LoadPGN(opts.pgnPath)
	if err != nil {
		return err
	}

	if opts.opponent {
		move, ok := opponent.Move(ctx, provider, credential, g.FinalFEN, logger)
		if !ok {
			return errors.New("the provider did not return a legal move")
		}
		fmt.Println(move)
		return nil
	}

	if opts.evalPath == "" {
		return errors.New("-eval is required")
	}
	eval, err := analysis.LoadGameEval(opts.evalPath)
	if err != nil {
		return err
	}

	session := chat.NewSession(provider, logger)
	orchestrator := insight.New(provider, analysis.NewRequestBuilder(game.Notation{}), session, logger)
	service := ui.NewInsightService(logger, orchestrator, provider.Config(), g, eval, credential)

	if opts.plain {
		return runPlain(ctx, service, os.Stdin, os.Stdout, os.Stderr)
	}

	var settingsService ui.SettingsService
	if store != nil {
		settingsService = ui.NewSettingsService(logger, store, factory, cfg.Provider)
	}
	app, err := tui.NewApp(logger, service, settingsService, tui.Options{
		Theme:  cfg.Theme,
		Notify: !cfg.DisableNotifications,
	})
	if err != nil {
		return err
	}
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("error running application: %w", err)
	}
	logger.Info().Msg("Application shutdown")
	return nil
}

// resolveSelection picks provider, model and credential. Flags win over the
// saved settings, which win over the config file defaults. Credentials from
// the config file or environment win over saved keys.
func resolveSelection(ctx context.Context, cfg *config.Config, store *settings.Store, opts options) (providerID, model, credential string, err error) {
	providerID = opts.provider
	if providerID == "" {
		providerID = cfg.Provider
		if store != nil {
			if providerID, err = store.Provider(ctx, cfg.Provider); err != nil {
				return "", "", "", err
			}
		}
	}
	if !llm.IsKnownProvider(providerID) {
		return "", "", "", fmt.Errorf("unknown provider: %s", providerID)
	}

	model = opts.model
	if model == "" && store != nil {
		if saved, ok, err := store.Get(ctx, settings.KeyProvider); err == nil && ok && saved == providerID {
			if model, err = store.Model(ctx, providerID); err != nil {
				return "", "", "", err
			}
		}
	}

	credential = opts.key
	if credential == "" {
		credential = cfg.APIKey(providerID)
	}
	if credential == "" && store != nil {
		if credential, err = store.APIKey(ctx, providerID); err != nil {
			return "", "", "", err
		}
	}
	return providerID, model, credential, nil
}

func validateKey(ctx context.Context, store *settings.Store, provider llm.Provider, credential string) error {
	name := provider.Config().Name
	if store == nil {
		if !provider.ValidateCredential(ctx, credential) {
			return settings.ErrInvalidKey
		}
		fmt.Printf("%s API key is valid.\n", name)
		return nil
	}
	if err := store.SaveValidatedKey(ctx, provider, credential); err != nil {
		return err
	}
	if credential == "" {
		fmt.Printf("%s API key cleared.\n", name)
	} else {
		fmt.Printf("%s API key is valid and has been saved.\n", name)
	}
	return nil
}
