package solana

import (
	"errors"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"
)

// KeyManager generates the server-held ephemeral keypairs
// used to partially sign pool-creation transactions. The keypairs never
// hold funds; once the transaction is serialized they are discarded.
type KeyManager struct{}

func NewKeyManager() *KeyManager {
	return &KeyManager{}
}

// GenerateKeyPair generates a new Solana key pair.
func (km *KeyManager) GenerateKeyPair() (*types.Account, error) {
	account := types.NewAccount()
	return &account, nil
}

// SigningKey converts an account's key into the signing type the
// transaction builder expects.
func (km *KeyManager) SigningKey(account *types.Account) (solana.PrivateKey, error) {
	if account == nil || len(account.PrivateKey) != 64 {
		return nil, errors.New("invalid account private key")
	}
	return solana.PrivateKey(account.PrivateKey), nil
}

// PublicKey returns the account's public key in the transaction builder's type.
func (km *KeyManager) PublicKey(account *types.Account) (solana.PublicKey, error) {
	if account == nil {
		return solana.PublicKey{}, errors.New("nil account")
	}
	return solana.PublicKeyFromBase58(account.PublicKey.ToBase58())
}
