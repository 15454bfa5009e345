package models

import "time"

// TokenCreation is the bookkeeping row for one minted event token. A row
// exists once the pool-creation transaction has been built and handed to
// the creator's wallet; TransactionSignature stays empty until the signed
// transaction is confirmed.
type TokenCreation struct {
	ID                   uint      `gorm:"primarykey" json:"id"`
	MintAddress          string    `gorm:"size:44;uniqueIndex;not null" json:"mint_address"`
	CreatorAddress       string    `gorm:"size:44;index;not null" json:"creator_address"`
	PoolAddress          string    `gorm:"size:44;not null" json:"pool_address"`
	PositionAddress      string    `gorm:"size:44;not null" json:"position_address"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	Symbol               string    `gorm:"size:20;not null" json:"symbol"`
	URI                  string    `gorm:"type:text" json:"uri"`
	EventID              string    `gorm:"size:255;index;not null" json:"event_id"`
	TransactionSignature string    `gorm:"size:88" json:"transaction_signature"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenCreation) TableName() string {
	return "token_creations"
}
