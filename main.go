package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/shipping/internal/server"
	"github.com/tournevent/shipping/pkg/fulfillment"
	"go.uber.org/zap"
)

var version = "0.0.1"

var envFile string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "shipping",
	Short:   "Shipping options service - resolves fulfillment options for a checkout",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Resolve shipping options for a request file and print them",
	RunE:  runOptions,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	optionsCmd.Flags().StringP("file", "f", "", "path to a shipping options request JSON file")
	optionsCmd.Flags().StringSlice("embed", nil, "fulfillment types to restrict the response to")
	_ = optionsCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, optionsCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, envFile)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	a.logger.Info("Starting shipping options service",
		zap.Int("port", a.cfg.Port),
		zap.String("version", a.cfg.Version),
	)

	srv := server.New(server.Config{Port: a.cfg.Port}, a.engine, a.registry, a.logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runOptions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path, _ := cmd.Flags().GetString("file")
	embed, _ := cmd.Flags().GetStringSlice("embed")

	req, err := readRequest(path)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, envFile)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	options, err := a.engine.CreateShippingOptions(ctx, req, embed)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(options)
}

func readRequest(path string) (*fulfillment.ShippingOptionsRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening request: %w", err)
	}
	defer f.Close()

	var req fulfillment.ShippingOptionsRequest
	if err := json.NewDecoder(f).Decode(&req); err != nil {
		return nil, fmt.Errorf("decoding request %s: %w", path, err)
	}
	if req.SiteID == "" {
		return nil, fmt.Errorf("request %s: siteId is required", path)
	}
	return &req, nil
}
