package config

import (
	"os"
	"path/filepath"
	"strings"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/joho/godotenv"

	"github.com/UB-Mannheim/maidisco/library/log"
)

// LoadFromFile merges a settings file into gconfig.Shared.
// A blank path or a missing file leaves the shared config untouched,
// environment variables alone are enough to run the relay.
func LoadFromFile(cfgPath string) {
	cfgPath = strings.TrimSpace(cfgPath)
	if cfgPath == "" {
		log.Logger.Info("no configuration file given, using environment")
		return
	}
	if _, err := os.Stat(cfgPath); err != nil {
		log.Logger.Info("configuration file not found, using environment",
			zap.String("config", cfgPath))
		return
	}

	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		log.Logger.Panic("load configuration",
			zap.Error(err),
			zap.String("config", cfgPath))
	}

	log.Logger.Info("load configuration",
		zap.String("config", cfgPath))
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set are kept. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Logger.Warn("load dotenv", zap.String("file", p), zap.Error(err))
			continue
		}
		log.Logger.Debug("load dotenv", zap.String("file", p))
	}
}
