package main

import (
	"log/slog"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/po-tracker/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction gRPC API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			repo, err := a.openRepo(ctx, false)
			if err != nil {
				logger.Error("failed to open record store", "driver", cfg.Database.Driver, "error", err)
				return err
			}
			if repo != nil {
				defer func() { _ = repo.Close() }()
			}

			addr := cfg.Server.GRPCAddr
			if !strings.Contains(addr, ":") {
				addr = ":" + addr
			}
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				logger.Error("failed to listen on address", "addr", addr, "error", err)
				return err
			}

			svc := server.NewExtractionService(a.assembler, a.resolver, repo, logger)
			grpcServer, hs := server.New(svc, logger)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("grpc server listening", "addr", lis.Addr().String(), "store", repo != nil)
				errCh <- grpcServer.Serve(lis)
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down grpc server")
				hs.Shutdown()
				grpcServer.GracefulStop()
				return nil
			case err := <-errCh:
				return err
			}
		},
	}
}
