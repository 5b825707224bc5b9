package main

import (
	"log"

	"github.com/MrSnakeDoc/scanvault/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ scanvault failed to start: %v", err)
	}
}
