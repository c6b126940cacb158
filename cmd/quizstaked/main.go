// Command quizstaked runs the quizstake daemon: it connects a wallet to the
// quiz ledger contract and serves the session API over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/quizstake/quizstake/internal/chain"
	"github.com/quizstake/quizstake/internal/config"
	"github.com/quizstake/quizstake/internal/httpapi"
	"github.com/quizstake/quizstake/internal/quiz"
	"github.com/quizstake/quizstake/internal/wallet"
	"github.com/quizstake/quizstake/pkg/logger"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("quizstaked").WithError(err).Error("configuration invalid")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Service: "quizstaked",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("daemon exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(chain.Config{
		RPCURL:  cfg.RPCURL,
		ChainID: cfg.ChainID,
	})
	if err != nil {
		return err
	}

	w, err := buildWallet(cfg, client)
	if err != nil {
		return err
	}
	log.WithField("address", w.Address().Hex()).
		WithField("chain_id", cfg.ChainID).
		Info("wallet ready")

	ledgerAddr := common.HexToAddress(cfg.LedgerAddress)
	tokenAddr := common.HexToAddress(cfg.TokenAddress)

	ledger := quiz.NewLedgerAdapter(chain.NewQuizCaller(client, ledgerAddr, log))
	tokens := chain.NewERC20Caller(client)

	consumer := chain.ConsumerID(cfg.AttributionConsumer)
	executor, err := quiz.NewExecutor(quiz.ExecutorConfig{
		Wallet:          w,
		Receipts:        client,
		RequiredChainID: client.RequiredChainID(),
		Consumer:        consumer,
		Attribution:     chain.NewAttributionReporter(cfg.AttributionEndpoint, consumer, 0),
		Log:             log,
	})
	if err != nil {
		return err
	}

	cache := quiz.NewStatusCache(ledger, tokens, w.Address(), tokenAddr, cfg.RefreshInterval, log)
	board := quiz.NewStatusBoard(cfg.StatusClearDelay)

	svc, err := quiz.NewService(quiz.ServiceConfig{
		Wallet:          w,
		Ledger:          ledger,
		Tokens:          tokens,
		Runner:          executor,
		Cache:           cache,
		Notifier:        board,
		RequiredChainID: client.RequiredChainID(),
		Log:             log,
	})
	if err != nil {
		return err
	}

	if cfg.GeneratorEndpoint != "" {
		gen, err := quiz.NewGenerator(nil, cfg.GeneratorEndpoint, cfg.GeneratorAPIKey, log)
		if err != nil {
			return err
		}
		svc.WithGenerator(gen)
	}

	// First refresh before serving; failure only delays freshness.
	if err := cache.Refresh(ctx); err != nil {
		log.WithError(err).Warn("initial refresh failed")
	}

	refresher := quiz.NewRefresher(cache, cfg.RefreshInterval, log)
	if err := refresher.Start(ctx); err != nil {
		return err
	}
	defer refresher.Stop()

	handler := httpapi.NewHandler(svc, ledger, board, log)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildWallet picks the signer: a local key when configured, otherwise the
// node's managed account.
func buildWallet(cfg *config.Config, client *chain.Client) (wallet.Wallet, error) {
	if cfg.PrivateKey != "" {
		return wallet.NewLocalWallet(cfg.PrivateKey, client)
	}
	return wallet.NewHostWallet(client, common.HexToAddress(cfg.WalletAddress), cfg.ConstrainedHost), nil
}
