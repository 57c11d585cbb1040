package main

import (
	"riskdigest/cmd/handlers"
	"riskdigest/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
