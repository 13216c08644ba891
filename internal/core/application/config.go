package application

import (
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-auctions/internal/infrastructure/storage/db/badger"
	dbbolt "github.com/tdex-network/tdex-auctions/internal/infrastructure/storage/db/bolt"
	"github.com/tdex-network/tdex-auctions/internal/infrastructure/storage/db/inmemory"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"

	secretsDir      = "secrets"
	secretsFilename = "secrets.db"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

type Config struct {
	DBType  string
	Datadir string
	// SecretsPassword encrypts the commitment secrets at rest. Without it
	// secrets are kept in memory only.
	SecretsPassword string

	Ledger    ports.Ledger
	Contracts map[domain.ProtocolTag]string
	ChainID   uint64
	Scan      ScanConfig
	Clock     ports.Clock

	repo     ports.RepoManager
	registry *Registry
	tracker  TrackerService
	bids     BidService
	vickrey  VickreyService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return &domain.ConfigurationError{
			Reason: fmt.Errorf("unsupported db type %q", c.DBType),
		}
	}
	if c.Ledger == nil {
		return &domain.ConfigurationError{Reason: ErrLedgerNotConfigured}
	}
	if _, err := c.auctionRegistry(); err != nil {
		return err
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) Registry() *Registry {
	registry, _ := c.auctionRegistry()
	return registry
}

func (c *Config) TrackerService() TrackerService {
	svc, _ := c.trackerService()
	return svc
}

func (c *Config) BidService() BidService {
	svc, _ := c.bidService()
	return svc
}

// VickreyService returns nil if no sealed-bid contract is configured.
func (c *Config) VickreyService() VickreyService {
	svc, _ := c.vickreyService()
	return svc
}

// Close releases the local stores.
func (c *Config) Close() {
	if c.repo != nil {
		c.repo.Close()
		c.repo = nil
	}
}

func (c *Config) clock() ports.Clock {
	if c.Clock == nil {
		return ports.SystemClock{}
	}
	return c.Clock
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		case DBBadger:
			secrets, err := c.secretRepository()
			if err != nil {
				return nil, err
			}
			repoManager, err := dbbadger.NewRepoManager(c.Datadir, secrets, log.New())
			if err != nil {
				secrets.Close()
				return nil, err
			}
			c.repo = repoManager
		default:
			return nil, &domain.ConfigurationError{
				Reason: fmt.Errorf("unsupported db type %q", c.DBType),
			}
		}
	}
	return c.repo, nil
}

// secretRepository opens the encrypted secret store, or falls back to an
// in-memory one if there is no datadir or password to open it with. A store
// that exists but cannot be unlocked is an error.
func (c *Config) secretRepository() (domain.SecretRepository, error) {
	if c.Datadir == "" || c.SecretsPassword == "" {
		log.Warn(
			"secrets datadir or password not set, commitment secrets are kept " +
				"in memory and lost on restart",
		)
		return inmemory.NewSecretRepositoryImpl(), nil
	}

	secrets, err := dbbolt.NewSecretRepositoryImpl(
		filepath.Join(c.Datadir, secretsDir), secretsFilename,
		[]byte(c.SecretsPassword),
	)
	if err != nil {
		if errors.Is(err, dbbolt.ErrInvalidPassword) {
			return nil, err
		}
		return nil, fmt.Errorf("opening secrets db: %w", err)
	}
	return secrets, nil
}

func (c *Config) auctionRegistry() (*Registry, error) {
	if c.registry == nil {
		if c.Ledger == nil {
			return nil, &domain.ConfigurationError{Reason: ErrLedgerNotConfigured}
		}

		services := make([]AuctionService, 0, len(c.Contracts))
		for _, tag := range domain.AllProtocols() {
			contract, ok := c.Contracts[tag]
			if !ok || contract == "" {
				continue
			}
			svc, err := NewAuctionService(tag, contract, c.Ledger, c.Scan, c.clock())
			if err != nil {
				return nil, err
			}
			services = append(services, svc)
		}
		if len(services) <= 0 {
			return nil, &domain.ConfigurationError{Reason: ErrContractNotConfigured}
		}

		registry, err := NewRegistry(services...)
		if err != nil {
			return nil, err
		}
		c.registry = registry
	}
	return c.registry, nil
}

func (c *Config) trackerService() (TrackerService, error) {
	if c.tracker == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		registry, err := c.auctionRegistry()
		if err != nil {
			return nil, err
		}
		c.tracker = NewTrackerService(repo.ReferenceListRepository(), registry, c.ChainID)
	}
	return c.tracker, nil
}

func (c *Config) bidService() (BidService, error) {
	if c.bids == nil {
		registry, err := c.auctionRegistry()
		if err != nil {
			return nil, err
		}
		tracker, err := c.trackerService()
		if err != nil {
			return nil, err
		}
		c.bids = NewBidService(registry, tracker)
	}
	return c.bids, nil
}

func (c *Config) vickreyService() (VickreyService, error) {
	if c.vickrey == nil {
		registry, err := c.auctionRegistry()
		if err != nil {
			return nil, err
		}
		auction, err := registry.ServiceFor(domain.ProtocolVickrey)
		if err != nil {
			return nil, err
		}
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		tracker, err := c.trackerService()
		if err != nil {
			return nil, err
		}
		svc, err := NewVickreyService(auction, repo.SecretRepository(), tracker, c.clock())
		if err != nil {
			return nil, err
		}
		c.vickrey = svc
	}
	return c.vickrey, nil
}
