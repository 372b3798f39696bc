package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Lol3rrr/madn/internal/server"
)

var (
	port  string
	debug bool
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "server [--port <addr>] [--debug]",
		Short: "MADN game server",
		Long: `A WebSocket server for the board game Mensch ärgere Dich nicht.

Clients create a game session over HTTP, join it over WebSocket, and play
until every player has parked all four figures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	rootCmd.Flags().StringVar(&port, "port", "", "listen address, overrides SERVER_PORT")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config := server.NewConfigFromEnv()
	if port != "" {
		config.Port = port
	}
	server.SetConfig(config)

	mux := server.SetupRoutes()
	httpServer := server.CreateServer(config.Port, mux)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-signals:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}
	if err := server.GetRegistry().Shutdown(shutdownTimeout); err != nil {
		log.Warn().Err(err).Msg("registry shutdown incomplete")
	}

	return nil
}
