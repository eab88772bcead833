package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-flickr-colours/colours"
	"github.com/jrsteele09/go-flickr-colours/flickr"
	"github.com/jrsteele09/go-flickr-colours/internal/config"
	"github.com/jrsteele09/go-flickr-colours/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
}

func newRootCmd() *cobra.Command {
	var port, logLevel string

	root := &cobra.Command{
		Use:          "flickr-colours",
		Short:        "Flickr login and favourite colour demo site",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), port, logLevel)
		},
	}
	root.PersistentFlags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "zerolog level (overrides LOG_LEVEL)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), port, logLevel)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "colours",
		Short: "List the colour names the form understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listColours(cmd.OutOrStdout())
		},
	})
	return root
}

func listColours(w io.Writer) error {
	table := colours.Default()
	for _, name := range table.Names() {
		if _, err := fmt.Fprintf(w, "%-22s %s\n", name, table[name].Value); err != nil {
			return err
		}
	}
	return nil
}

func serve(ctx context.Context, port, logLevel string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New(config.WithPort(port), config.WithLogLevel(logLevel))
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	svc := flickr.NewClient(flickr.Settings{
		ConsumerKey:    c.GetConsumerKey(),
		ConsumerSecret: c.GetConsumerSecret(),
		CallbackURL:    c.GetCallbackURL(),
		OAuthURL:       c.GetFlickrOAuthURL(),
		APIURL:         c.GetFlickrAPIURL(),
		Perms:          c.GetFlickrPerms(),
		Timeout:        c.GetFlickrTimeout(),
	})

	handler, err := server.New(c, svc)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
