package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/internal/session"
	"github.com/msto63/dramatica/internal/stage/handler"
	"github.com/msto63/dramatica/internal/stage/rpc"
	"github.com/msto63/dramatica/internal/stage/server"
	coregrpc "github.com/msto63/dramatica/pkg/core/grpc"
	"github.com/spf13/cobra"
)

var (
	serveHTTPPort int
	serveGRPCPort int
	serveNoGRPC   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stage over HTTP, WebSocket and gRPC",
	Long: `Starts the stage servers.

Endpoints:
  HTTP       /api/v1/{tokenize,analyze,format,run,sessions}  (default :8080)
  WebSocket  /api/v1/ws
  gRPC       dramatica.v1.Stage with health service       (default :9090)

Interactive sessions are kept in the store named by [session] backend
(memory, sqlite or postgres).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&serveHTTPPort, "port", 0, "HTTP port (overrides config)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC port (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoGRPC, "no-grpc", false, "do not start the gRPC server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if serveHTTPPort != 0 {
		cfg.Server.Port = serveHTTPPort
	}
	if serveGRPCPort != 0 {
		cfg.GRPC.Port = serveGRPCPort
	}
	if serveNoGRPC {
		cfg.GRPC.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := appLogger.Logger
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := session.Open(ctx, session.Config{
		Backend:       cfg.Session.Backend,
		Path:          cfg.Session.Path,
		DSN:           cfg.Session.DSN,
		TTL:           cfg.Session.TTL.Duration,
		MaxSessions:   cfg.Session.MaxSessions,
		PurgeInterval: cfg.Session.PurgeInterval.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	engine := newEngine()
	manager := session.NewManager(session.Options{Store: store, Engine: engine, Logger: logger})
	defer manager.Close()

	httpServer, err := server.New(server.Config{
		Host:           cfg.Server.Host,
		HTTPPort:       cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout.Duration,
		WriteTimeout:   cfg.Server.WriteTimeout.Duration,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		CORS: handler.CORS{
			Enabled:        cfg.Server.CORS.Enabled,
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			AllowedMethods: cfg.Server.CORS.AllowedMethods,
		},
		MaxSessions: cfg.Session.MaxSessions,
	}, engine, manager, logger)
	if err != nil {
		return err
	}
	if err := httpServer.StartAsync(); err != nil {
		return err
	}

	var grpcServer *coregrpc.Server
	if cfg.GRPC.Enabled {
		gc := coregrpc.DefaultServerConfig()
		gc.Host = cfg.GRPC.Host
		gc.Port = cfg.GRPC.Port
		gc.EnableReflection = cfg.GRPC.EnableReflection
		if cfg.GRPC.MaxRecvMsgSize > 0 {
			gc.MaxRecvMsgSize = cfg.GRPC.MaxRecvMsgSize
		}
		gc.Logger = logger

		grpcServer = coregrpc.NewServer(gc)
		rpc.Register(grpcServer.GRPCServer(), rpc.NewService(rpc.Options{
			Engine:  engine,
			Manager: manager,
			Logger:  logger,
		}))
		grpcServer.SetServing(rpc.ServiceName, true)
		if err := grpcServer.StartAsync(); err != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
			defer cancel()
			httpServer.Stop(shutdownCtx)
			return err
		}
	}

	logger.Info("Dramatica stage ready", mdwlog.Fields{
		"http":    httpServer.Address(),
		"grpc":    grpcAddress(grpcServer),
		"backend": cfg.Session.Backend,
	})

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	if grpcServer != nil {
		grpcServer.StopWithTimeout(shutdownCtx)
	}
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.ErrorWithErr("HTTP shutdown failed", err)
		return err
	}
	return nil
}

func grpcAddress(s *coregrpc.Server) string {
	if s == nil {
		return "disabled"
	}
	return s.Address()
}
