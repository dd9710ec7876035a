package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/fsdevblog/groph-bundles/internal/logger"

	"github.com/fsdevblog/groph-bundles/internal/app"
	"github.com/fsdevblog/groph-bundles/internal/config"
)

func main() {
	// .env необязателен, уже заданные переменные окружения имеют приоритет.
	envErr := godotenv.Load()

	l := logger.New(os.Stdout)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		l.WithError(envErr).Warn("failed to load .env file")
	}

	conf := config.MustLoadConfig()

	if err := app.New(conf, l).Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("graceful shutdown")
			os.Exit(0)
		}
		panic(err)
	}
}
