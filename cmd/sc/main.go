package main

import (
	"github.com/joho/godotenv"

	"streakcity/cmd/sc/root"
)

func main() {
	_ = godotenv.Load()
	root.Execute()
}
