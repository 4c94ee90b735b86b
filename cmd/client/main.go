package main

import (
	"context"
	"log"
	"os"

	"github.com/what-to-eat/client/internal/buildinfo"
	"github.com/what-to-eat/client/internal/client/cli"
	"github.com/what-to-eat/client/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
