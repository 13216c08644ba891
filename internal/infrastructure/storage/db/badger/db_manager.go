package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	referenceListsDir = "lists"
	gcInterval        = 30 * time.Minute
)

type repoManager struct {
	referenceListRepository domain.ReferenceListRepository
	secretRepository        domain.SecretRepository
}

// NewRepoManager opens (or creates if not exists) the badger store of the
// reference lists under baseDbDir. An empty baseDbDir opens an in-memory
// store. Secrets are sensitive and never stored in badger, the caller
// chooses where they go.
func NewRepoManager(
	baseDbDir string, secrets domain.SecretRepository, logger badger.Logger,
) (ports.RepoManager, error) {
	if secrets == nil {
		return nil, ErrMissingSecretRepository
	}

	var listsDir string
	if len(baseDbDir) > 0 {
		listsDir = filepath.Join(baseDbDir, referenceListsDir)
	}

	store, err := createDb(listsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening reference lists db: %w", err)
	}

	return &repoManager{
		referenceListRepository: NewReferenceListRepositoryImpl(store),
		secretRepository:        secrets,
	}, nil
}

func (d *repoManager) ReferenceListRepository() domain.ReferenceListRepository {
	return d.referenceListRepository
}

func (d *repoManager) SecretRepository() domain.SecretRepository {
	return d.secretRepository
}

func (d *repoManager) Close() {
	d.secretRepository.Close()
	d.referenceListRepository.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(gcInterval)

		go func() {
			for range ticker.C {
				if db.Badger().IsClosed() {
					ticker.Stop()
					return
				}
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
