package main

import (
	"context"

	"lastmile/cmd"

	"github.com/labstack/gommon/log"
)

func main() {
	if err := cmd.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("lastmile: %v", err)
	}
}
