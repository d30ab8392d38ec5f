package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lapmart/lapmart/config"
	"github.com/lapmart/lapmart/internal/app"
	"github.com/lapmart/lapmart/internal/auth"
	"github.com/lapmart/lapmart/internal/marketapi"
	"github.com/lapmart/lapmart/internal/webserver"
)

var (
	conffile = flag.String("c", "/etc/lapmart.yml", "config file")
	showver  = flag.Bool("v", false, "print version")
)

const version = "v1.0.0"

func main() {
	flag.Parse()
	if *showver {
		fmt.Println("lapmart", version)
		return
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	guard := auth.NewGuard(application.TokenService(), application.RoleLookup())
	webserver.Init(cfg, guard)
	marketapi.Register(application)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return webserver.Listen()
	})

	g.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-sigs:
			zap.S().Infof("received signal %s, shutting down", sig)
			return webserver.Shutdown()
		}
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server stopped: %v", err)
	}
}
