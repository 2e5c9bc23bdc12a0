package cmd

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/config"
	"github.com/UB-Mannheim/maidisco/library/llm"
	"github.com/UB-Mannheim/maidisco/library/log"
)

var rootCMD = &cobra.Command{
	Use:   "maidisco",
	Short: "maidisco",
	Long:  `natural-language search relay for Primo and VuFind library catalogs`,
	Args:  gcmd.NoExtraArgs,
}

// initialize loads configuration and builds the relay service.
func initialize(ctx context.Context, cmd *cobra.Command) (*config.Settings, *relay.Service, error) {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return nil, nil, errors.Wrap(err, "bind pflags")
	}

	setupSettings(ctx)
	setupLogger(ctx)

	if err := validateStartupConfig(); err != nil {
		return nil, nil, errors.Wrap(err, "validate startup config")
	}

	settings, err := config.LoadShared()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load settings")
	}

	completer, err := llm.New(settings.LLMConfig())
	if err != nil {
		return nil, nil, errors.Wrap(err, "new llm provider")
	}

	svc, err := relay.NewServiceFromSettings(settings, completer)
	if err != nil {
		return nil, nil, errors.Wrap(err, "new relay service")
	}

	log.Logger.Info("relay initialized",
		zap.String("llm_provider", settings.LLM.Provider),
		zap.String("llm_model", settings.LLM.Model),
		zap.String("backend", string(settings.Catalog.Backend)),
		zap.String("endpoint", settings.Catalog.Endpoint))
	return settings, svc, nil
}

func setupSettings(ctx context.Context) {
	// mode
	if gconfig.Shared.GetBool("debug") {
		fmt.Println("run in debug mode")
		gconfig.Shared.Set("log-level", "debug")
	}

	config.LoadDotEnv(gconfig.Shared.GetString("env-file"))
	config.LoadFromFile(gconfig.Shared.GetString("config"))
}

func setupLogger(ctx context.Context) {
	lvl := gconfig.Shared.GetString("log-level")
	if err := log.Logger.ChangeLevel(logSDK.Level(lvl)); err != nil {
		log.Logger.Panic("change log level", zap.Error(err), zap.String("level", lvl))
	}
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().String("listen", "127.0.0.1:5001", "like `localhost:8080`")
	rootCMD.PersistentFlags().StringP("config", "c", "", "optional settings file path")
	rootCMD.PersistentFlags().String("env-file", ".env", "dotenv file loaded before the environment is read")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		logSDK.Shared.Panic("start", zap.Error(err))
	}
}
