package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

// SubmissionStatus tracks a state-changing request sent to the ledger.
type SubmissionStatus int

const (
	SubmissionPending SubmissionStatus = iota
	SubmissionConfirmed
	SubmissionFailed
)

func (s SubmissionStatus) String() string {
	switch s {
	case SubmissionConfirmed:
		return "confirmed"
	case SubmissionFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Submission is a transaction sent to the ledger. Once sent it cannot be
// cancelled, only superseded by the ledger's own rules.
type Submission struct {
	Ref         domain.AuctionRef
	Op          string
	From        string
	Value       decimal.Decimal
	TxHash      string
	Status      SubmissionStatus
	BlockNumber uint64
	Reason      string
}

// IsFinal returns whether the submission reached a terminal status.
func (s Submission) IsFinal() bool {
	return s.Status != SubmissionPending
}

type submitter struct {
	ledger ports.Ledger
}

func (s submitter) send(
	ctx context.Context, ref domain.AuctionRef, op string, tx ports.TxRequest,
) (*Submission, error) {
	txHash, err := s.ledger.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", op, ref, err)
	}

	log.WithFields(log.Fields{
		"auction": ref.Token(),
		"op":      op,
		"tx":      txHash,
	}).Debug("transaction submitted")

	return &Submission{
		Ref:    ref,
		Op:     op,
		From:   tx.From,
		Value:  tx.Value,
		TxHash: txHash,
		Status: SubmissionPending,
	}, nil
}

// await never resubmits: a failure while waiting leaves the submission
// pending, its outcome unknown.
func (s submitter) await(ctx context.Context, sub *Submission) (*Submission, error) {
	if sub == nil {
		return nil, fmt.Errorf("missing submission")
	}
	if sub.IsFinal() {
		return sub, nil
	}

	receipt, err := s.ledger.WaitForReceipt(ctx, sub.TxHash)
	if err != nil {
		return sub, fmt.Errorf("waiting for %s: %w", sub.TxHash, err)
	}

	settled := *sub
	settled.BlockNumber = receipt.BlockNumber
	if !receipt.Success {
		settled.Status = SubmissionFailed
		settled.Reason = receipt.RevertReason
		return &settled, &domain.TxFailedError{TxHash: sub.TxHash, Reason: receipt.RevertReason}
	}

	settled.Status = SubmissionConfirmed
	return &settled, nil
}
