package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/motion-detector/internal/config"
	"github.com/ironsheep/motion-detector/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("motion-detector %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("motion-detector - forwards camera frames that contain motion")
			fmt.Println()
			fmt.Println("Usage: motion-detector [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=%d        Downsample width\n", config.EnvTargetWidth, config.DefaultTargetWidth)
			fmt.Printf("  %s=%d                    Background model history (frames)\n", config.EnvHistory, config.DefaultHistory)
			fmt.Printf("  %s=%g               Background model variance threshold\n", config.EnvVarThreshold, config.DefaultVarThreshold)
			fmt.Printf("  %s=%t           Mark shadows separately\n", config.EnvDetectShadows, config.DefaultDetectShadows)
			fmt.Printf("  %s=500           Foreground pixels needed for motion\n", config.EnvMotionPixels)
			fmt.Printf("  %s=info                Log level\n", config.EnvLogLevel)
			fmt.Printf("  %s=%s   Input topic URL\n", config.EnvInput, config.DefaultInputURL)
			fmt.Printf("  %s=%s                Output topic listen address\n", config.EnvOutput, config.DefaultOutputAddr)
			return
		}
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	log.SetLevel(cfg.LogLevel)
	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Debug("Motion detector build")

	srv, err := server.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Fatal("Server error")
	}
}
