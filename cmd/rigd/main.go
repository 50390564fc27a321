package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dougsko/rigd/pkg/config"
	"github.com/dougsko/rigd/pkg/engine"
	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/verbose"
)

var (
	configPath  = flag.String("config", "config.yaml", "Configuration file path")
	version     = flag.Bool("version", false, "Show version information")
	verboseFlag = flag.Bool("verbose", false, "Dump every CAT frame to the log")
)

const Build = "development"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("rigd version %s (%s)\n", engine.Version, Build)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logging.InitGlobalLogger(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseGlobalLogger()

	verbose.SetEnabled(*verboseFlag)

	logging.Infof("main", "rigd version %s starting...", engine.Version)
	logging.Infof("main", "Radio: model %d on %s", cfg.Radio.Model, cfg.Radio.Device)
	if cfg.Web.Enabled {
		logging.Infof("main", "Web interface: http://%s:%d", cfg.Web.BindAddress, cfg.Web.Port)
	}

	daemon, err := NewRigDaemon(cfg)
	if err != nil {
		logging.Errorf("main", "Failed to create daemon: %v", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := daemon.Start(); err != nil {
		logging.Errorf("main", "Failed to start daemon: %v", err)
		os.Exit(1)
	}

	logging.Info("main", "rigd started successfully")

	<-sigChan
	logging.Info("main", "Shutting down...")

	if err := daemon.Stop(); err != nil {
		logging.Errorf("main", "Error during shutdown: %v", err)
	}

	logging.Info("main", "rigd stopped")
}
