package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/dreamware/namesrv/internal/bootstrap"
	"github.com/dreamware/namesrv/internal/config"
	"github.com/dreamware/namesrv/internal/namesrv"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string, opts ...bootstrap.Option) int {
	opts = append([]bootstrap.Option{bootstrap.WithControllerFactory(newController)}, opts...)
	return bootstrap.New(opts...).Run(args)
}

func newController(svc *config.ServiceConfig, tr *config.TransportConfig, logger *zap.Logger) bootstrap.Controller {
	return namesrv.NewController(svc, tr, logger)
}
