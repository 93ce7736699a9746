package main

import (
	"context"
	"log"
	"os"

	"github.com/Apurer/storekeeper/internal/app/api"
)

func main() {
	code, err := api.Run(context.Background())
	if err != nil {
		log.Printf("store API failed: %v", err)
	}
	os.Exit(code)
}
