package handler

import (
	"github.com/emzola/athenaeum/config"
	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/internal/jsonlog"
	"github.com/emzola/athenaeum/service"
	"github.com/jellydator/ttlcache/v3"
)

// Handler defines Handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	cache   *ttlcache.Cache[string, *data.User]
	service service.Service
}

// New creates a new instance of Handler. The cache memoizes authentication
// token lookups for a short TTL so hot clients don't hit the database on
// every request.
func New(cfg config.Config, logger *jsonlog.Logger, cache *ttlcache.Cache[string, *data.User], service service.Service) *Handler {
	return &Handler{
		config:  cfg,
		logger:  logger,
		cache:   cache,
		service: service,
	}
}
