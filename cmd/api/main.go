package main

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"

	"m33t/internal/handlers"
	"m33t/internal/routes"
	"m33t/internal/session"
	"m33t/pkg/config"
	"m33t/pkg/solana/cpamm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db, err := config.NewDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	rpcClient := rpc.New(cfg.SolanaRPC)
	amm := cpamm.NewClient(rpcClient)

	var publisher handlers.EventPublisher
	if cfg.RabbitMQConfigured() {
		conn, err := config.NewRabbitMQ(cfg)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: ", err)
		}
		defer conn.Close()

		p, err := config.NewPublisher(conn)
		if err != nil {
			log.Fatal("Failed to create publisher: ", err)
		}
		defer p.Close()
		publisher = p
		log.Info("RabbitMQ initialized successfully")
	} else {
		log.Info("RabbitMQ not configured, skipping initialization")
	}

	h := handlers.New(cfg, db, rpcClient, amm, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.NewMonitor(h.Bridge, h.Sessions).Run(ctx)

	r := routes.SetupRouter(h)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
