package main

import (
	"github.com/joho/godotenv"

	"github.com/whatupfoo/h2-dev-plus/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
