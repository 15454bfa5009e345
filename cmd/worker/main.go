package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"m33t/internal/handlers"
	"m33t/internal/models"
	"m33t/pkg/config"
	mcsolana "m33t/pkg/solana"
)

const confirmationTimeout = 2 * time.Minute

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}

	db, err := config.NewDB(cfg)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}

	conn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		logrus.Fatal("Failed to connect to RabbitMQ: ", err)
	}
	defer conn.Close()

	rpcClient := rpc.New(cfg.SolanaRPC)
	watcher := mcsolana.NewConfirmationWatcher(cfg.SolanaWS, rpcClient)

	// Hourly sweep surfacing ledger rows whose creation transaction was
	// never submitted or never reported back.
	c := cron.New()
	if _, err := c.AddFunc("0 * * * *", func() { reportStaleRows(db) }); err != nil {
		logrus.Fatal("Failed to schedule stale row sweep: ", err)
	}
	c.Start()
	defer c.Stop()

	msgConsumer, err := config.NewConsumer(conn, handlers.TokenCreatedQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Token confirmation worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var event handlers.TokenCreatedEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			logrus.Errorf("Failed to unmarshal message: %v", err)
			return err
		}

		fields := logrus.Fields{
			"record_id": event.RecordID,
			"mint":      event.MintAddress,
			"event_id":  event.EventID,
		}

		if event.Signature == "" {
			logrus.WithFields(fields).Info("Token creation transaction handed out")
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), confirmationTimeout)
		defer cancel()

		if err := watcher.WaitForConfirmation(ctx, event.Signature); err != nil {
			logrus.WithFields(fields).Errorf("Transaction %s did not confirm: %v", event.Signature, err)
			return nil // failed transactions are not requeued
		}

		res := db.Model(&models.TokenCreation{}).
			Where("mint_address = ?", event.MintAddress).
			Update("transaction_signature", event.Signature)
		if res.Error != nil {
			logrus.WithFields(fields).Errorf("Failed to record signature: %v", res.Error)
			return res.Error
		}

		logrus.WithFields(fields).Infof("Transaction %s confirmed", event.Signature)
		return nil
	})
	if err != nil {
		logrus.Fatal("Consumer failed: ", err)
	}
}

// reportStaleRows logs ledger rows older than 24 hours that never got a
// transaction signature attached.
func reportStaleRows(db *gorm.DB) {
	var rows []models.TokenCreation
	cutoff := time.Now().Add(-24 * time.Hour)
	if err := db.Where("transaction_signature = '' AND created_at < ?", cutoff).
		Find(&rows).Error; err != nil {
		logrus.Errorf("Stale row sweep failed: %v", err)
		return
	}

	for _, row := range rows {
		logrus.WithFields(logrus.Fields{
			"record_id":  row.ID,
			"mint":       row.MintAddress,
			"event_id":   row.EventID,
			"created_at": row.CreatedAt,
		}).Warn("Token creation never confirmed")
	}

	logrus.Infof("Stale row sweep complete: %d unconfirmed rows", len(rows))
}
