// main is the entry point for the indiscore CLI.
package main

import (
	"errors"
	"io/fs"

	"github.com/huangsam/indiscore/cmd"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; it usually holds INDISCORE_SOURCE_DB_CONNECT.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		contract.LogWarn("Error loading .env file", err)
	}

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Error stopping profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("Error running command", err)
	}
}
