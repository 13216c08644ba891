package main

import (
	"github.com/tdex-network/tdex-auctions/internal/core/application"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/pkg/pricecurve"
)

// Amounts are printed in base units, times as unix seconds.

type auctionView struct {
	Ref           string       `json:"ref"`
	Protocol      string       `json:"protocol"`
	Auctioneer    string       `json:"auctioneer"`
	AssetKind     string       `json:"asset_kind"`
	AssetContract string       `json:"asset_contract"`
	AssetValue    string       `json:"asset_value"`
	StartingPrice string       `json:"starting_price"`
	CurrentPrice  string       `json:"current_price"`
	HighestBidder string       `json:"highest_bidder,omitempty"`
	MinNextBid    string       `json:"min_next_bid,omitempty"`
	StartAt       int64        `json:"start_at"`
	Deadline      int64        `json:"deadline"`
	Ended         bool         `json:"ended"`
	Dutch         *dutchView   `json:"dutch,omitempty"`
	Vickrey       *vickreyView `json:"vickrey,omitempty"`
}

type dutchView struct {
	ReservedPrice string  `json:"reserved_price"`
	Duration      int64   `json:"duration"`
	DecayFactor   float64 `json:"decay_factor"`
}

type vickreyView struct {
	CommitPhaseEnd int64  `json:"commit_phase_end"`
	CommitFee      string `json:"commit_fee"`
	SecondPrice    string `json:"second_price"`
	Revealed       uint64 `json:"revealed"`
}

func newAuctionView(a domain.AuctionState) auctionView {
	v := auctionView{
		Ref:           a.Ref.Token(),
		Protocol:      a.Protocol().String(),
		Auctioneer:    a.Auctioneer,
		AssetKind:     a.Asset.Kind.String(),
		AssetContract: a.Asset.Contract,
		AssetValue:    a.Asset.Value.String(),
		StartingPrice: a.StartingPrice.String(),
		CurrentPrice:  a.CurrentPrice.String(),
		StartAt:       a.StartAt.Unix(),
		Deadline:      a.Deadline.Unix(),
		Ended:         a.Ended,
	}
	if !domain.IsZeroAddress(a.HighestBidder) {
		v.HighestBidder = a.HighestBidder
	}

	switch {
	case a.Dutch != nil:
		v.Dutch = &dutchView{
			ReservedPrice: a.Dutch.ReservedPrice.String(),
			Duration:      int64(a.Dutch.Duration.Seconds()),
			DecayFactor:   a.Dutch.DecayFactor,
		}
	case a.Vickrey != nil:
		v.Vickrey = &vickreyView{
			CommitPhaseEnd: a.Vickrey.CommitPhaseEnd.Unix(),
			CommitFee:      a.Vickrey.CommitFee.String(),
			SecondPrice:    a.Vickrey.SecondPrice.String(),
			Revealed:       a.Vickrey.Revealed,
		}
	default:
		v.MinNextBid = a.MinNextBid().String()
	}
	return v
}

func newAuctionViews(auctions []domain.AuctionState) []auctionView {
	views := make([]auctionView, 0, len(auctions))
	for _, a := range auctions {
		views = append(views, newAuctionView(a))
	}
	return views
}

type bidView struct {
	Kind     string `json:"kind"`
	Bidder   string `json:"bidder"`
	Amount   string `json:"amount"`
	Time     int64  `json:"time"`
	Block    uint64 `json:"block"`
	LogIndex uint64 `json:"log_index"`
	TxHash   string `json:"tx_hash"`
}

func newBidViews(events []domain.BidEvent) []bidView {
	views := make([]bidView, 0, len(events))
	for _, e := range events {
		views = append(views, bidView{
			Kind:     e.Kind.String(),
			Bidder:   e.Bidder,
			Amount:   e.Amount.String(),
			Time:     e.Time.Unix(),
			Block:    e.BlockNumber,
			LogIndex: e.LogIndex,
			TxHash:   e.TxHash,
		})
	}
	return views
}

type submissionView struct {
	Ref    string `json:"ref"`
	Op     string `json:"op"`
	From   string `json:"from"`
	Value  string `json:"value"`
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
	Block  uint64 `json:"block,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func newSubmissionView(s *application.Submission) *submissionView {
	if s == nil {
		return nil
	}
	return &submissionView{
		Ref:    s.Ref.Token(),
		Op:     s.Op,
		From:   s.From,
		Value:  s.Value.String(),
		TxHash: s.TxHash,
		Status: s.Status.String(),
		Block:  s.BlockNumber,
		Reason: s.Reason,
	}
}

type secretView struct {
	Ref        string `json:"ref"`
	Bidder     string `json:"bidder"`
	Amount     string `json:"amount"`
	Salt       string `json:"salt"`
	Commitment string `json:"commitment"`
	CreatedAt  int64  `json:"created_at"`
	Confirmed  bool   `json:"confirmed"`
	TxHash     string `json:"tx_hash,omitempty"`
}

func newSecretView(s domain.CommitmentSecret) secretView {
	return secretView{
		Ref:        s.Ref.Token(),
		Bidder:     s.Bidder,
		Amount:     s.Amount.String(),
		Salt:       s.Salt,
		Commitment: s.Commitment.Hex(),
		CreatedAt:  s.CreatedAt.Unix(),
		Confirmed:  s.Confirmed,
		TxHash:     s.TxHash,
	}
}

type seriesView struct {
	Shape  string      `json:"shape"`
	Points []pointView `json:"points"`
}

type pointView struct {
	Elapsed int64  `json:"elapsed"`
	Price   string `json:"price"`
}

func newSeriesViews(series []pricecurve.Series) []seriesView {
	views := make([]seriesView, 0, len(series))
	for _, s := range series {
		points := make([]pointView, 0, len(s.Points))
		for _, p := range s.Points {
			points = append(points, pointView{
				Elapsed: int64(p.Elapsed.Seconds()),
				Price:   p.Price.String(),
			})
		}
		views = append(views, seriesView{s.Shape.String(), points})
	}
	return views
}
