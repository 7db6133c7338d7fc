package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/logtide/logtide/internal/cache"
	"github.com/logtide/logtide/internal/commons"
	"github.com/logtide/logtide/internal/logger"
	"github.com/logtide/logtide/internal/repository"
	"github.com/logtide/logtide/internal/service"
	"github.com/logtide/logtide/internal/worker"
)

type Server struct {
	port    uint16
	router  http.Handler
	config  Config
	repo    repository.LogRepository
	cache   cache.Cache
	sweeper *worker.RetentionSweeper
}

func NewServer(config Config) (*Server, error) {
	repo, err := repository.NewSQLiteLogRepository(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open log store: %w", err)
	}

	var c cache.Cache
	if config.RedisAddr != "" {
		c, err = cache.NewRedisCache(config.RedisAddr, config.RedisPass)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to connect query cache: %w", err)
		}
	} else {
		c = cache.NewNoopCache()
	}

	logger.InitLogger(repo)

	logService := service.NewLogService(repo, c)
	sweeper := worker.NewRetentionSweeper(repo, config.RetentionDays)

	server := &Server{
		port:    config.ServerPort,
		config:  config,
		repo:    repo,
		cache:   c,
		sweeper: sweeper,
	}
	server.registerRoutes(logService)
	return server, nil
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	logger.Infof("starting server on port %d with %d day retention", s.port, s.config.RetentionDays)

	if err := s.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start retention sweeper: %w", err)
	}

	ch := make(chan error, 1)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		IdleTimeout:  commons.ServerIdleTimeout,
		ReadTimeout:  commons.ServerReadTimeout,
		WriteTimeout: commons.ServerWriteTimeout,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			ch <- fmt.Errorf("failed to start server: %w", err)
		}
		close(ch)
	}()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), commons.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Close releases the cache and the log store. Call after Start returns.
func (s *Server) Close() error {
	if err := s.cache.Close(); err != nil {
		logger.Errorf("failed to close cache: %v", err)
	}
	return s.repo.Close()
}
