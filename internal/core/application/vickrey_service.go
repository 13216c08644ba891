package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"github.com/tdex-network/tdex-auctions/pkg/commitment"
)

// VickreyService drives the commit-reveal lifecycle of a bidder on sealed-bid
// auctions, keeping the secrets needed to reveal across restarts.
type VickreyService interface {
	// Phase returns the phase of the auction from a fresh snapshot.
	Phase(ctx context.Context, ref domain.AuctionRef) (domain.VickreyPhase, error)
	// Commit commits to amount with a freshly generated salt.
	Commit(
		ctx context.Context, ref domain.AuctionRef, bidder string, amount decimal.Decimal,
	) (*CommitResult, error)
	// CommitWithSalt commits to amount with a caller provided salt.
	CommitWithSalt(
		ctx context.Context, ref domain.AuctionRef, bidder string,
		amount decimal.Decimal, salt string,
	) (*CommitResult, error)
	// Reveal discloses the stored secret of bidder.
	Reveal(ctx context.Context, ref domain.AuctionRef, bidder string) (*Submission, error)
	// RevealBid discloses explicit values. A mismatch is reported along with
	// the stored secret, if any, and is never resubmitted.
	RevealBid(ctx context.Context, req RevealRequest) (*Submission, error)
	// Abandon erases the stored secret. The bid cannot be revealed anymore.
	Abandon(ctx context.Context, ref domain.AuctionRef, bidder string) error
	GetSecret(
		ctx context.Context, ref domain.AuctionRef, bidder string,
	) (*domain.CommitmentSecret, error)
	// PendingSecrets returns the secrets of bidder not yet revealed.
	PendingSecrets(ctx context.Context, bidder string) ([]domain.CommitmentSecret, error)
}

type vickreyLifecycle struct {
	auction AuctionService
	secrets domain.SecretRepository
	tracker TrackerService
	clock   ports.Clock
}

func NewVickreyService(
	auction AuctionService, secrets domain.SecretRepository,
	tracker TrackerService, clock ports.Clock,
) (VickreyService, error) {
	if auction == nil || auction.Protocol() != domain.ProtocolVickrey {
		return nil, &domain.ConfigurationError{
			Reason: fmt.Errorf("sealed-bid lifecycle requires the %s service", domain.ProtocolVickrey),
		}
	}
	if secrets == nil {
		return nil, &domain.ConfigurationError{Reason: errors.New("missing secret repository")}
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &vickreyLifecycle{auction, secrets, tracker, clock}, nil
}

func (v *vickreyLifecycle) Phase(
	ctx context.Context, ref domain.AuctionRef,
) (domain.VickreyPhase, error) {
	state, err := v.auction.GetAuction(ctx, ref)
	if err != nil {
		return domain.PhaseNotStarted, err
	}
	return state.Phase(v.clock.Now()), nil
}

func (v *vickreyLifecycle) Commit(
	ctx context.Context, ref domain.AuctionRef, bidder string, amount decimal.Decimal,
) (*CommitResult, error) {
	return v.CommitWithSalt(ctx, ref, bidder, amount, commitment.GenerateSalt())
}

// CommitWithSalt persists the secret before submitting the commitment, so
// that a crash after the submission never loses it. If the commitment is
// definitely not published the previous secret, if any, is put back.
func (v *vickreyLifecycle) CommitWithSalt(
	ctx context.Context, ref domain.AuctionRef, bidder string,
	amount decimal.Decimal, salt string,
) (*CommitResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	secret, err := domain.NewCommitmentSecret(ref, bidder, amount, salt, v.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	phase, err := v.Phase(ctx, ref)
	if err != nil {
		return nil, err
	}
	if phase != domain.PhaseCommit {
		return nil, &domain.PhaseViolationError{Op: "commit", Phase: phase.String()}
	}

	prev, err := v.secrets.GetSecret(ctx, ref, bidder)
	if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return nil, err
	}
	if err := v.secrets.SaveSecret(ctx, *secret); err != nil {
		return nil, fmt.Errorf("persisting commitment secret: %w", err)
	}

	sub, err := v.auction.SubmitCommitment(ctx, CommitRequest{
		Ref:        ref,
		Bidder:     bidder,
		Commitment: secret.Commitment,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTransport) {
			log.WithError(err).WithField("auction", ref.Token()).Warn(
				"commitment outcome unknown, keeping new secret",
			)
			return nil, err
		}
		v.restore(ctx, *secret, prev)
		return nil, err
	}

	settled, err := v.auction.Await(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrTxFailed) {
			v.restore(ctx, *secret, prev)
			return &CommitResult{settled, *secret}, err
		}
		return &CommitResult{sub, *secret}, err
	}

	secret.Confirmed = true
	secret.TxHash = settled.TxHash
	if err := v.secrets.SaveSecret(ctx, *secret); err != nil {
		return &CommitResult{settled, *secret}, fmt.Errorf(
			"persisting confirmed commitment secret: %w", err,
		)
	}
	v.track(ctx, bidder, ref)

	return &CommitResult{settled, *secret}, nil
}

func (v *vickreyLifecycle) restore(
	ctx context.Context, failed domain.CommitmentSecret, prev *domain.CommitmentSecret,
) {
	var err error
	if prev != nil {
		err = v.secrets.SaveSecret(ctx, *prev)
	} else {
		err = v.secrets.DeleteSecret(ctx, failed.Ref, failed.Bidder)
	}
	if err != nil {
		log.WithError(err).WithField("auction", failed.Ref.Token()).Warn(
			"unable to restore previous commitment secret",
		)
	}
}

func (v *vickreyLifecycle) track(ctx context.Context, bidder string, ref domain.AuctionRef) {
	if v.tracker == nil {
		return
	}
	if err := v.tracker.TrackBid(ctx, bidder, ref); err != nil {
		log.WithError(err).WithField("auction", ref.Token()).Warn(
			"unable to track bid",
		)
	}
}

func (v *vickreyLifecycle) Reveal(
	ctx context.Context, ref domain.AuctionRef, bidder string,
) (*Submission, error) {
	secret, err := v.secrets.GetSecret(ctx, ref, bidder)
	if err != nil {
		return nil, err
	}
	return v.RevealBid(ctx, RevealRequest{
		Ref:    ref,
		Bidder: bidder,
		Amount: secret.Amount,
		Salt:   secret.Salt,
	})
}

func (v *vickreyLifecycle) RevealBid(
	ctx context.Context, req RevealRequest,
) (*Submission, error) {
	stored, err := v.secrets.GetSecret(ctx, req.Ref, req.Bidder)
	if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return nil, err
	}

	sub, err := v.auction.RevealBid(ctx, req)
	if err != nil {
		var mismatch *domain.SecretMismatchError
		if errors.As(err, &mismatch) && stored != nil {
			return nil, &domain.SecretMismatchError{
				Secret:   *stored,
				OnChain:  mismatch.OnChain,
				Computed: mismatch.Computed,
			}
		}
		return nil, err
	}

	settled, err := v.auction.Await(ctx, sub)
	if err != nil {
		return settled, err
	}

	if stored != nil {
		if err := v.secrets.DeleteSecret(ctx, req.Ref, req.Bidder); err != nil {
			log.WithError(err).WithField("auction", req.Ref.Token()).Warn(
				"unable to erase revealed commitment secret",
			)
		}
	}
	return settled, nil
}

func (v *vickreyLifecycle) Abandon(
	ctx context.Context, ref domain.AuctionRef, bidder string,
) error {
	if _, err := v.secrets.GetSecret(ctx, ref, bidder); err != nil {
		return err
	}
	return v.secrets.DeleteSecret(ctx, ref, bidder)
}

func (v *vickreyLifecycle) GetSecret(
	ctx context.Context, ref domain.AuctionRef, bidder string,
) (*domain.CommitmentSecret, error) {
	return v.secrets.GetSecret(ctx, ref, bidder)
}

func (v *vickreyLifecycle) PendingSecrets(
	ctx context.Context, bidder string,
) ([]domain.CommitmentSecret, error) {
	if !domain.IsValidAddress(bidder) {
		return nil, domain.ErrInvalidAddress
	}
	return v.secrets.GetSecretsForBidder(ctx, bidder)
}
