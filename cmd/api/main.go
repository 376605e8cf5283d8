package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"user-table-service/cmd/api/app"
	"user-table-service/cmd/api/server"
	"user-table-service/pkg/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print build information and exit")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	if err := run(*envFile); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}

func run(envFile string) error {
	// Variables already set in the environment win over the file
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		return err
	}

	return application.Run(ctx)
}
