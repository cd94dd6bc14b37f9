package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nstehr/skirmish/agent"
	"github.com/nstehr/skirmish/battle"
	"github.com/nstehr/skirmish/ipc"
	"github.com/nstehr/skirmish/level"
	"github.com/nstehr/skirmish/rng"
)

func newServeCmd() *cobra.Command {
	var (
		socketPath string
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve games to a rendering shell over a unix socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			levels, err := loadLevels()
			if err != nil {
				return err
			}
			color.New(color.FgCyan, color.Bold).Println(banner)
			return serve(cmd.Context(), socketPath, levels, seed)
		},
	}
	cmd.Flags().StringVar(&socketPath, "socket", "/tmp/skirmish.sock", "Unix socket path")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses 1)")
	return cmd
}

func serve(parent context.Context, socketPath string, levels *level.Set, seed int64) error {
	if parent == nil {
		parent = context.Background()
	}
	slog.Info("starting skirmish", "levels", levels.Count(), "seed", seed)

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return err
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		session := int64(0)
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			// Each session gets its own generator so games stay reproducible.
			go handleConn(conn, levels, seed+session)
			session++
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

func handleConn(conn net.Conn, levels *level.Set, seed int64) {
	c := ipc.NewConnection(conn, nil)
	game := battle.New(levels, rng.New(seed))
	a := agent.New(c, game)
	a.Register()
	c.ReadLoop()
}
