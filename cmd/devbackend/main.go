package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"banbds/internal/devserver"
	"banbds/internal/logging"
)

func main() {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	v.SetEnvPrefix("BANBDS_DEV")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("secret", "")
	v.SetDefault("device_ttl", time.Hour)
	v.SetDefault("user_ttl", 24*time.Hour)
	v.SetDefault("renew_grace", 30*time.Second)
	v.SetDefault("log_level", "info")

	logger := logging.New(v.GetString("log_level"), "text")
	srv := devserver.New(devserver.Config{
		Secret:     v.GetString("secret"),
		DeviceTTL:  v.GetDuration("device_ttl"),
		UserTTL:    v.GetDuration("user_ttl"),
		RenewGrace: v.GetDuration("renew_grace"),
	}, logger)

	addr := v.GetString("addr")
	errCh := make(chan error, 1)
	go func() {
		logger.Info("devbackend listening", "addr", addr)
		errCh <- srv.App().Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "listen: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.App().ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
}
