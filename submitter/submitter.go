// Package submitter drives a transaction through its full lifecycle:
// validate, estimate, hand to the wallet for signing, then poll for the
// mined receipt.
package submitter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"snap-vault/chain"
	"snap-vault/vaulterr"
	"snap-vault/wallet"
)

// PollPolicy receipt polling schedule. Tuning it is a config concern;
// the lifecycle logic never hardcodes a schedule.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollPolicy 30 attempts at 2s covers typical L2/testnet block
// times with headroom.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: 2 * time.Second, MaxAttempts: 30}
}

// Request a prepared contract invocation
type Request struct {
	From   common.Address
	To     common.Address
	Data   []byte
	Amount string // decimal ether, empty for no value
}

// Result the mined outcome of a submission
type Result struct {
	TxHash  common.Hash
	Receipt *types.Receipt
}

// Submitter owns the submit-and-confirm path. The signer is the wallet
// session; the backend is read-only chain access.
type Submitter struct {
	signer  wallet.Signer
	backend chain.Backend
	policy  PollPolicy
}

// New create a submitter with the given polling policy
func New(signer wallet.Signer, backend chain.Backend, policy PollPolicy) *Submitter {
	if policy.Interval <= 0 || policy.MaxAttempts <= 0 {
		policy = DefaultPollPolicy()
	}
	return &Submitter{signer: signer, backend: backend, policy: policy}
}

// Submit run the full lifecycle. Validation failures surface before any
// network traffic; a timed-out poll reports ReceiptTimeout with the
// hash preserved in the message so the caller can keep watching.
func (s *Submitter) Submit(ctx context.Context, req *Request) (*Result, error) {
	value, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	tx := &wallet.TxRequest{From: req.From, To: req.To, Value: value, Data: req.Data}

	// Gas estimation is advisory: the wallet estimates again on its own,
	// so a failure here must not block submission.
	gas, err := s.backend.EstimateGas(ctx, req.From, req.To, value, req.Data)
	if err != nil {
		log.Printf("Gas estimate failed, deferring to wallet: %v", err)
	} else {
		tx.Gas = gas
	}

	hashStr, err := s.signer.SendTransaction(ctx, tx)
	if err != nil {
		return nil, Classify(err)
	}
	txHash := common.HexToHash(hashStr)
	log.Printf("Transaction submitted: %s", txHash.Hex())

	receipt, err := s.awaitReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, vaulterr.New(vaulterr.KindChainExecutionFailed,
			fmt.Sprintf("transaction %s reverted on chain", txHash.Hex()))
	}
	return &Result{TxHash: txHash, Receipt: receipt}, nil
}

// awaitReceipt poll until the transaction is mined or the policy is
// exhausted.
func (s *Submitter) awaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(s.policy.Interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		receipt, err := s.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, chain.ErrReceiptNotFound) {
			return nil, vaulterr.Wrap(vaulterr.KindChainExecutionFailed, "receipt lookup failed", err)
		}

		if attempt == s.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, vaulterr.Wrap(vaulterr.KindReceiptTimeout,
				fmt.Sprintf("confirmation wait cancelled for %s", txHash.Hex()), ctx.Err())
		case <-ticker.C:
		}
	}

	return nil, vaulterr.New(vaulterr.KindReceiptTimeout,
		fmt.Sprintf("no receipt for %s after %d attempts; transaction may still confirm", txHash.Hex(), s.policy.MaxAttempts))
}

// CheckBalance report whether the account can cover the given value.
// Advisory only: gas is not included, the chain gives the final answer.
func (s *Submitter) CheckBalance(ctx context.Context, account common.Address, value *big.Int) error {
	balance, err := s.backend.BalanceAt(ctx, account)
	if err != nil {
		return fmt.Errorf("balance lookup failed: %w", err)
	}
	if balance.Cmp(value) < 0 {
		return vaulterr.New(vaulterr.KindInsufficientFunds,
			fmt.Sprintf("balance %s wei below required %s wei", balance, value))
	}
	return nil
}
