package network

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	json "github.com/goccy/go-json"

	"github.com/leengari/simpledb/internal/command"
	"github.com/leengari/simpledb/internal/storage/manager"
)

type Request struct {
	Query string `json:"query"`
}

// Start starts the TCP database server
func Start(ctx context.Context, port int, registry *manager.Registry) error {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		slog.Error("Failed to bind to port", "port", port, "error", err)
		return err
	}

	slog.Info("Running on port", "port", port)
	return Serve(ctx, listener, registry)
}

// Serve accepts connections until ctx is cancelled or the listener fails.
// Each connection gets its own session.
func Serve(ctx context.Context, listener net.Listener, registry *manager.Registry) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	defer listener.Close()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Failed to accept connection", "error", err)
			continue
		}
		go handleConnection(ctx, conn, registry)
	}
}

func handleConnection(ctx context.Context, conn net.Conn, registry *manager.Registry) {
	defer conn.Close()

	session := command.NewSession(ctx, registry)
	logger := slog.With("remote", conn.RemoteAddr().String())
	logger.Debug("client connected")

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			if err == io.EOF {
				logger.Debug("client disconnected")
				return
			}
			logger.Error("decode error", "error", err)

			// Send error back to client
			_ = encoder.Encode(&command.Result{
				Error: fmt.Sprintf("Invalid request format: %v", err),
			})
			return
		}

		if req.Query == "exit" || req.Query == "\\q" {
			return
		}

		result, err := session.Execute(req.Query)
		if err != nil {
			result = &command.Result{Error: err.Error()}
		}

		if err := encoder.Encode(result); err != nil {
			logger.Error("encode error", "error", err)
			return
		}
	}
}
