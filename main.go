package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/store"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel) // Set to InfoLevel (change to DebugLevel for detailed logs)
}

func main() {
	a := buildApp()

	a.controller.Start()
	defer a.controller.Stop()

	server := &http.Server{
		Addr:    ":" + a.cfg.Configuration.Port,
		Handler: buildHandler(a),
	}

	go func() {
		log.Infof("%s Listening on port %s", logcolors.LogServer, a.cfg.Configuration.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("%s Server failed: %v", logcolors.LogServer, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("%s Shutting down", logcolors.LogServer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s Shutdown error: %v", logcolors.LogServer, err)
	}

	if bolt, ok := a.store.(*store.BoltStore); ok {
		if err := bolt.Close(); err != nil {
			log.Errorf("%s Failed to close store: %v", logcolors.LogCache, err)
		}
	}
}
