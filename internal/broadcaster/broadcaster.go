// Package broadcaster submits dispense transactions to the chain. The only
// implementation here is a simulator; the faucet core depends on the
// interface alone.
package broadcaster

import "context"

// Result is a successfully broadcast transaction.
type Result struct {
	TransactionHash string
	ExplorerURL     string
}

// Broadcaster submits a dispense of amount base units to a wallet address.
// It may block for a variable, bounded time and should honor ctx.
type Broadcaster interface {
	Broadcast(ctx context.Context, walletAddress, amount string) (*Result, error)
}
