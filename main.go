package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/robalobadob/medicle/internal/cli"
)

func main() {
	_ = godotenv.Load()
	os.Exit(cli.Execute(context.Background()))
}
