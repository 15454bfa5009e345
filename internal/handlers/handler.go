package handlers

import (
	"github.com/gagliardetto/solana-go/rpc"
	"gorm.io/gorm"

	"m33t/internal/session"
	"m33t/pkg/circle"
	"m33t/pkg/config"
	mcsolana "m33t/pkg/solana"
	"m33t/pkg/solana/cpamm"
)

// EventPublisher publishes domain events to the message broker. It is nil
// when no broker is configured.
type EventPublisher interface {
	Publish(queueName string, message interface{}) error
}

// TokenCreatedQueue receives an event for every pool-creation transaction
// the API hands out.
const TokenCreatedQueue = "token_created"

// Handler carries the dependencies every endpoint needs. All of them are
// constructed in main and injected; handlers hold no globals.
type Handler struct {
	DB        *gorm.DB
	RPC       *rpc.Client
	AMM       cpamm.AMM
	Keys      *mcsolana.KeyManager
	Circle    *circle.Client
	Publisher EventPublisher
	Sessions  *session.Store
	Bridge    *session.Bridge
	Cfg       *config.Config
}

func New(cfg *config.Config, db *gorm.DB, rpcClient *rpc.Client, amm cpamm.AMM, publisher EventPublisher) *Handler {
	return &Handler{
		DB:        db,
		RPC:       rpcClient,
		AMM:       amm,
		Keys:      mcsolana.NewKeyManager(),
		Circle:    circle.NewClient(cfg.CircleAPIKey, cfg.CircleEntitySecret),
		Publisher: publisher,
		Sessions:  session.NewStore(),
		Bridge:    session.NewBridge(),
		Cfg:       cfg,
	}
}
