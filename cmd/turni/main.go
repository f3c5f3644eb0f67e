package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rlicordari/turni-autogen-experimental/internal/config"
	"github.com/rlicordari/turni-autogen-experimental/internal/server"
	"github.com/rlicordari/turni-autogen-experimental/internal/util"
)

var (
	port    = flag.Int("port", 0, "listen port (overrides config.toml)")
	devMode = flag.Bool("dev", false, "development mode")
	dataDir = flag.String("dataDir", "", "data directory (overrides config.toml)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Turni Reparto - generatore turni mensili")
	fmt.Println("==========================================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config load failed, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	if dir, err := config.EnsureDataDir(cfg); err != nil {
		log.Printf("data directory not created: %v", err)
	} else {
		fmt.Printf("Cartella dati: %s\n", dir)
	}

	srv := server.NewServer(cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("In ascolto sulla porta %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("server start failed: %v", err)
		}
	}()

	if !cfg.Server.DevMode {
		fmt.Printf("Apertura browser: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Apri manualmente: %s\n", url)
		}
	} else {
		fmt.Printf("Modalità sviluppo: %s\n", url)
	}

	fmt.Println("\nCtrl+C per terminare...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nChiusura in corso...")
	if err := srv.Close(); err != nil {
		log.Printf("close failed: %v", err)
	}
}
