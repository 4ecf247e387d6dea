package main

import (
	"log"
	"os"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/api/auth"
	"github.com/trezcool/elimu/core"
	logsvc "github.com/trezcool/elimu/services/logger"
	"github.com/trezcool/elimu/session"
)

var logger core.Logger

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatal(err)
	}
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	validate, translator := core.NewValidator()
	auth.RegisterValidators(validate, translator)

	client := api.NewClient(&api.Options{Config: conf, Logger: logger})

	cli := commandLine{
		client:     client,
		gate:       session.NewGate(client),
		validate:   validate,
		translator: translator,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
