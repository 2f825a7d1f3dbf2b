package main

import (
	"context"
	"errors"
	"fmt"
	"leadcapture/app/client/gateway"
	"leadcapture/app/config"
	"leadcapture/app/service/conversation"
	"leadcapture/app/service/mcptools"
	"leadcapture/app/service/terminal"
	"leadcapture/app/service/widget"
	"leadcapture/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var errBackendsDown = errors.New("some backends are unreachable")

type options struct {
	configPath string
	verbose    bool
}

func main() {
	mylog.Preinit()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "leadcapture",
		Short:         "Chat gateway for the charity lead capture assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the YAML config")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the widget API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(opts, nil, func(ctx context.Context, di *do.Injector) error {
					return do.MustInvoke[*widget.Service](di).Run(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "chat",
			Short: "Chat with the assistant from the terminal",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(opts, nil, func(ctx context.Context, di *do.Injector) error {
					return do.MustInvoke[*terminal.Service](di).RunChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
				})
			},
		},
		&cobra.Command{
			Use:   "leads [id]",
			Short: "List captured leads, or show one lead",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(opts, nil, func(ctx context.Context, di *do.Injector) error {
					svc := do.MustInvoke[*terminal.Service](di)

					if len(args) == 0 {
						svc.PrintLeads(ctx, cmd.OutOrStdout())
						return nil
					}

					id, err := strconv.ParseInt(args[0], 10, 64)
					if err != nil {
						return fmt.Errorf("invalid lead id %q: %w", args[0], err)
					}

					return svc.PrintLead(ctx, cmd.OutOrStdout(), id)
				})
			},
		},
		&cobra.Command{
			Use:   "probe",
			Short: "Check connectivity to the local and production backends",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(opts, nil, func(ctx context.Context, di *do.Injector) error {
					if !do.MustInvoke[*terminal.Service](di).PrintConnectivity(ctx, cmd.OutOrStdout()) {
						return errBackendsDown
					}

					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve the gateway as MCP tools over stdio",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				// stdout carries the protocol
				return run(opts, os.Stderr, func(ctx context.Context, di *do.Injector) error {
					return do.MustInvoke[*mcptools.Service](di).Serve(ctx, os.Stdin, os.Stdout)
				})
			},
		},
	)

	return root
}

func run(opts options, logOut *os.File, fn func(ctx context.Context, di *do.Injector) error) error {
	di := do.New()
	defer di.Shutdown()
	defer log.Debug("Waiting for services to finish...")

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	do.ProvideValue(di, cfg)

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	if logOut == nil {
		logOut = os.Stderr
	}

	if err = mylog.Init(cfg, logOut, level); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	do.Provide(di, gateway.New)
	do.Provide(di, conversation.New)
	do.Provide(di, terminal.New)
	do.Provide(di, widget.New)
	do.Provide(di, mcptools.New)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		defer signal.Stop(sigint)

		select {
		case <-sigint:
			log.Info("Shutting down...")
			cancel()
		case <-appCtx.Done():
		}
	}()

	slog.Debug("Service started",
		"primary", do.MustInvoke[*gateway.Client](di).Primary())

	if err = fn(appCtx, di); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
