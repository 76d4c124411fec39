package main

import (
	"context"
	"flag"

	"github.com/DenisKhanov/RouteBOT/internal/app/routebot"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", "bot.env", "path to the .env file with bot settings")
	flag.Parse()

	ctx := context.Background()
	a, err := routebot.NewApp(ctx, *envFile)
	if err != nil {
		logrus.Fatalf("failed to init app: %s", err.Error())
	}
	if err = a.Run(); err != nil {
		logrus.Fatalf("bot stopped with error: %s", err.Error())
	}
}
