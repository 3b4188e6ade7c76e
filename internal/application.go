package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ancarodev/ancaro-server/internal/config"
	"github.com/ancarodev/ancaro-server/internal/gridgame"
	"github.com/ancarodev/ancaro-server/internal/registry"
	"github.com/ancarodev/ancaro-server/internal/usecase"
	"github.com/ancarodev/ancaro-server/transport/rest"
	"github.com/ancarodev/ancaro-server/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	rules, err := gridgame.NewRules(conf.Game.BoardRows, conf.Game.BoardCols, conf.Game.WinLength)
	if err != nil {
		return fmt.Errorf("could not build game rules: %w", err)
	}

	log.Info("game rules loaded", "rows", rules.Rows, "cols", rules.Cols, "winLength", rules.WinLength)

	rooms := registry.New(rules.Cells())
	roomManager := usecase.NewRoomManager(logger, rules, rooms)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
