package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/waterkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/waterkeeper/internal/cli"
	"github.com/dmitrijs2005/waterkeeper/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	app.Run(ctx)

}
