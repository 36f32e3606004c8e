package faucet

import (
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sui-testnet-faucet/internal/model"
)

// walletAddressRe matches a 32-byte hex address with 0x prefix.
var walletAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)

// ValidWalletAddress reports whether addr is a well-formed SUI address.
func ValidWalletAddress(addr string) bool {
	return walletAddressRe.MatchString(addr)
}

// Ledger is the in-memory store of dispense requests. Entries are created
// pending and transition exactly once to success or failed.
type Ledger struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*model.DispenseRequest
}

func NewLedger() *Ledger {
	return &Ledger{requests: make(map[uuid.UUID]*model.DispenseRequest)}
}

// Create allocates a new pending entry. The address format is re-checked here
// even though handlers validate first; a malformed address must never reach
// the ledger.
func (l *Ledger) Create(wallet, ip, amount string, now time.Time) (*model.DispenseRequest, error) {
	if !ValidWalletAddress(wallet) {
		return nil, NewInvalidAddress("Invalid SUI wallet address format")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	req := &model.DispenseRequest{
		ID:            uuid.New(),
		WalletAddress: wallet,
		IPAddress:     ip,
		Amount:        amount,
		Status:        model.StatusPending,
		CreatedAt:     now,
	}
	l.requests[req.ID] = req

	cp := *req
	return &cp, nil
}

// ResolveSuccess transitions a pending entry to success, recording the
// transaction hash.
func (l *Ledger) ResolveSuccess(id uuid.UUID, txHash string) (*model.DispenseRequest, error) {
	return l.resolve(id, func(req *model.DispenseRequest) {
		req.Status = model.StatusSuccess
		req.TransactionHash = txHash
	})
}

// ResolveFailure transitions a pending entry to failed, recording the error
// message.
func (l *Ledger) ResolveFailure(id uuid.UUID, errMsg string) (*model.DispenseRequest, error) {
	return l.resolve(id, func(req *model.DispenseRequest) {
		req.Status = model.StatusFailed
		req.ErrorMessage = errMsg
	})
}

func (l *Ledger) resolve(id uuid.UUID, apply func(*model.DispenseRequest)) (*model.DispenseRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, NewNotFound("dispense request not found")
	}
	if req.Resolved() {
		return nil, NewAlreadyResolved("dispense request is already resolved")
	}

	apply(req)
	cp := *req
	return &cp, nil
}

// Get returns the entry with the given id.
func (l *Ledger) Get(id uuid.UUID) (*model.DispenseRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, NewNotFound("dispense request not found")
	}
	cp := *req
	return &cp, nil
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(limit int) []*model.DispenseRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*model.DispenseRequest, 0, len(l.requests))
	for _, req := range l.requests {
		cp := *req
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ByWallet returns all entries for the given wallet address.
func (l *Ledger) ByWallet(wallet string) []*model.DispenseRequest {
	return l.filter(func(req *model.DispenseRequest) bool {
		return req.WalletAddress == wallet
	})
}

// ByIP returns all entries created from the given IP address.
func (l *Ledger) ByIP(ip string) []*model.DispenseRequest {
	return l.filter(func(req *model.DispenseRequest) bool {
		return req.IPAddress == ip
	})
}

func (l *Ledger) filter(match func(*model.DispenseRequest) bool) []*model.DispenseRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*model.DispenseRequest
	for _, req := range l.requests {
		if match(req) {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out
}

// Len returns the number of ledger entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.requests)
}
