package main

import (
	"github.com/DeepanKumar2553/neoshare/cmd/client/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()
	cmd.Execute()
}
