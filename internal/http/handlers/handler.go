package handlers

import (
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/config"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/queue"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config
	Queue  *queue.Client
}
