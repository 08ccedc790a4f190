package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"

	"ventas/internal/cli"
	"ventas/internal/log"
	"ventas/internal/sources/google"
)

var args struct {
	Port    int           `default:"8085" env:"OAUTH_REDIRECT_PORT" help:"Local port for the OAuth redirect (http://localhost:PORT/callback)."`
	Out     string        `default:"token.json" env:"GOOGLE_OAUTH_TOKEN_FILE" help:"Where to save the token." type:"path"`
	Timeout time.Duration `default:"5m" help:"How long to wait for the browser."`
}

func main() {
	cli.LoadEnvFile()
	kctx := kong.Parse(&args,
		kong.Name("ventas-oauth"),
		kong.Description("Authorize read-only Google Sheets access and save the token for DATA_BACKEND=sheets."),
	)
	logger := cli.SetupLogger(os.Stderr)

	clientJSON, err := google.OAuthClientJSON()
	kctx.FatalIfErrorf(err)
	cfg, err := goauth.ConfigFromJSON(clientJSON, google.ReadonlyScope)
	if err != nil {
		cli.Fatal(logger, "Invalid OAuth client", err)
	}
	// The OAuth client must list this URI among its authorized redirect URIs.
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", args.Port)

	tok, err := authorize(cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Authorization failed", err)
	}
	if err := google.WriteToken(args.Out, tok); err != nil {
		cli.Fatal(logger, "Failed to save token", err)
	}
	logger.Info("Saved token", "path", args.Out)
}

func authorize(cfg *oauth2.Config, logger *log.Logger) (*oauth2.Token, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, args.Timeout)
	defer cancelTimeout()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			errCh <- errors.New(errStr)
			return
		}
		fmt.Fprintln(w, "Puedes cerrar esta ventana y volver a la terminal.")
		codeCh <- r.URL.Query().Get("code")
	})
	srv := &http.Server{Addr: fmt.Sprintf("localhost:%d", args.Port), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "Open this URL to authorize:\n%s\n", cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	select {
	case code := <-codeCh:
		logger.Info("Authorization code received")
		return cfg.Exchange(ctx, code)
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}
