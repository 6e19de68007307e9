package main

import (
	"context"
	"time"

	"github.com/niksmo/finsearch/config"
	"github.com/niksmo/finsearch/internal/app"
	"github.com/niksmo/finsearch/pkg/sigctx"
)

const closeTimeout = 10 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	finsearch := app.New(sigCtx, cfg)

	finsearch.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	finsearch.Close(ctx)
}
