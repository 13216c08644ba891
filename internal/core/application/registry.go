package application

import (
	"fmt"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

// NewAuctionService returns the implementation of the given protocol. There
// is no default: adding a protocol tag requires adding a case here.
func NewAuctionService(
	protocol domain.ProtocolTag, contract string, ledger ports.Ledger,
	scan ScanConfig, clock ports.Clock,
) (AuctionService, error) {
	switch protocol {
	case domain.ProtocolEnglish:
		return NewEnglishService(contract, ledger, scan, clock)
	case domain.ProtocolLinear, domain.ProtocolExponential, domain.ProtocolLogarithmic:
		return NewDutchService(protocol, contract, ledger, scan, clock)
	case domain.ProtocolAllPay:
		return NewAllPayService(contract, ledger, scan, clock)
	case domain.ProtocolVickrey:
		return NewVickreyAuctionService(contract, ledger, scan, clock)
	default:
		return nil, fmt.Errorf("%s: %w", protocol, domain.ErrUnsupportedProtocol)
	}
}

// Registry is the dispatch table from protocol tag to service.
type Registry struct {
	services map[domain.ProtocolTag]AuctionService
}

// NewRegistry indexes the given services by their protocol.
func NewRegistry(services ...AuctionService) (*Registry, error) {
	r := &Registry{make(map[domain.ProtocolTag]AuctionService, len(services))}
	for _, svc := range services {
		tag := svc.Protocol()
		if !tag.IsValid() {
			return nil, fmt.Errorf("%s: %w", tag, domain.ErrUnsupportedProtocol)
		}
		if _, ok := r.services[tag]; ok {
			return nil, fmt.Errorf("%w %s", ErrDuplicateService, tag)
		}
		r.services[tag] = svc
	}
	return r, nil
}

// ServiceFor returns the service registered for tag, or
// domain.ErrUnsupportedProtocol.
func (r *Registry) ServiceFor(tag domain.ProtocolTag) (AuctionService, error) {
	svc, ok := r.services[tag]
	if !ok {
		return nil, fmt.Errorf("%s: %w", tag, domain.ErrUnsupportedProtocol)
	}
	return svc, nil
}

// Resolve returns the service governing ref.
func (r *Registry) Resolve(ref domain.AuctionRef) (AuctionService, error) {
	return r.ServiceFor(ref.Protocol)
}

// Protocols returns the registered tags in declaration order.
func (r *Registry) Protocols() []domain.ProtocolTag {
	tags := make([]domain.ProtocolTag, 0, len(r.services))
	for _, tag := range domain.AllProtocols() {
		if _, ok := r.services[tag]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}
