package config

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// WatchSIGHUP reloads the live pipelines config from path every time the
// process receives SIGHUP. A bad reload is logged and the previous config
// stays active. It runs until stop is closed.
func WatchSIGHUP(logger *slog.Logger, live *LivePipelinesConfig, path string, stop <-chan struct{}) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	for {
		select {
		case <-stop:
			return
		case <-sighup:
			if err := live.Reload(path); err != nil {
				logger.Warn("pipelines config reload failed, keeping previous config", "error", err.Error())
				continue
			}
			logger.Info("pipelines config reloaded", "path", path)
		}
	}
}
