package http

import (
	"github.com/nats-io/nats.go"

	"github.com/yichenzhou/farepass/internal/adapters/filecache"
	"github.com/yichenzhou/farepass/internal/adapters/valkey"
	"github.com/yichenzhou/farepass/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Pass     *usecases.PassService
	Calendar *usecases.CalendarService
	Store    *filecache.Store
	Cache    *valkey.Cache
	NATS     *nats.Conn
}
