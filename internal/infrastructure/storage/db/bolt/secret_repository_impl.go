package dbbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcwallet/snacl"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/pkg/commitment"
	"go.etcd.io/bbolt"
)

const (
	defaultDBTimeout = time.Second
)

var (
	rootBucket    = []byte("root")
	secretsBucket = []byte("secrets")

	// encryptionKeyID is the key of the root bucket storing the encryption
	// key parameters, salted and hashed with the password.
	encryptionKeyID = []byte("enckey")
)

// storedSecret is the plaintext layout of a secret, encrypted before being
// written to disk.
type storedSecret struct {
	Ref        string          `json:"ref"`
	Bidder     string          `json:"bidder"`
	Amount     decimal.Decimal `json:"amount"`
	Salt       string          `json:"salt"`
	Commitment string          `json:"commitment"`
	CreatedAt  time.Time       `json:"createdAt"`
	Confirmed  bool            `json:"confirmed"`
	TxHash     string          `json:"txHash,omitempty"`
}

func toStored(s domain.CommitmentSecret) storedSecret {
	return storedSecret{
		Ref:        s.Ref.Token(),
		Bidder:     strings.ToLower(s.Bidder),
		Amount:     s.Amount,
		Salt:       s.Salt,
		Commitment: s.Commitment.Hex(),
		CreatedAt:  s.CreatedAt,
		Confirmed:  s.Confirmed,
		TxHash:     s.TxHash,
	}
}

func (s storedSecret) toDomain() (*domain.CommitmentSecret, error) {
	ref, err := domain.DecodeRef(s.Ref)
	if err != nil {
		return nil, err
	}
	c, err := commitment.FromHex(s.Commitment)
	if err != nil {
		return nil, err
	}
	return &domain.CommitmentSecret{
		Ref:        ref,
		Bidder:     s.Bidder,
		Amount:     s.Amount,
		Salt:       s.Salt,
		Commitment: c,
		CreatedAt:  s.CreatedAt,
		Confirmed:  s.Confirmed,
		TxHash:     s.TxHash,
	}, nil
}

type secretRepositoryImpl struct {
	db *bbolt.DB

	encKeyMtx sync.RWMutex
	encKey    *snacl.SecretKey
}

// NewSecretRepositoryImpl opens (or creates if not exists) the bolt file
// holding the commitment secrets, every value encrypted with a key derived
// from password. Opening an existing store with a different password fails
// with ErrInvalidPassword.
func NewSecretRepositoryImpl(
	datadir, filename string, password []byte,
) (domain.SecretRepository, error) {
	if len(password) <= 0 {
		return nil, ErrPasswordRequired
	}
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(
		filepath.Join(datadir, filename), 0600,
		&bbolt.Options{Timeout: defaultDBTimeout},
	)
	if err != nil {
		return nil, err
	}

	var encKey *snacl.SecretKey
	if err := db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(rootBucket)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(secretsBucket); err != nil {
			return err
		}

		if dbKey := root.Get(encryptionKeyID); len(dbKey) > 0 {
			// A key is already stored, so try to unlock with the password.
			key := &snacl.SecretKey{}
			if err := key.Unmarshal(dbKey); err != nil {
				return err
			}
			if err := key.DeriveKey(&password); err != nil {
				return ErrInvalidPassword
			}
			encKey = key
			return nil
		}

		key, err := snacl.NewSecretKey(
			&password, snacl.DefaultN, snacl.DefaultR, snacl.DefaultP,
		)
		if err != nil {
			return err
		}
		if err := root.Put(encryptionKeyID, key.Marshal()); err != nil {
			return err
		}
		encKey = key
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &secretRepositoryImpl{db: db, encKey: encKey}, nil
}

func (r *secretRepositoryImpl) SaveSecret(
	_ context.Context, secret domain.CommitmentSecret,
) error {
	r.encKeyMtx.RLock()
	defer r.encKeyMtx.RUnlock()

	if r.encKey == nil {
		return ErrStoreClosed
	}

	buf, err := json.Marshal(toStored(secret))
	if err != nil {
		return err
	}
	encrypted, err := r.encKey.Encrypt(buf)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(secretsBucket)
		if bucket == nil {
			return ErrBucketNotFound
		}
		return bucket.Put([]byte(secret.Key()), encrypted)
	})
}

func (r *secretRepositoryImpl) GetSecret(
	_ context.Context, ref domain.AuctionRef, bidder string,
) (*domain.CommitmentSecret, error) {
	r.encKeyMtx.RLock()
	defer r.encKeyMtx.RUnlock()

	if r.encKey == nil {
		return nil, ErrStoreClosed
	}

	var secret *domain.CommitmentSecret
	if err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(secretsBucket)
		if bucket == nil {
			return ErrBucketNotFound
		}

		encrypted := bucket.Get([]byte(domain.SecretKey(ref, bidder)))
		if len(encrypted) <= 0 {
			return domain.ErrSecretNotFound
		}

		s, err := r.decrypt(encrypted)
		if err != nil {
			return err
		}
		secret = s
		return nil
	}); err != nil {
		return nil, err
	}
	return secret, nil
}

func (r *secretRepositoryImpl) DeleteSecret(
	_ context.Context, ref domain.AuctionRef, bidder string,
) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(secretsBucket)
		if bucket == nil {
			return ErrBucketNotFound
		}
		return bucket.Delete([]byte(domain.SecretKey(ref, bidder)))
	})
}

func (r *secretRepositoryImpl) GetSecretsForBidder(
	_ context.Context, bidder string,
) ([]domain.CommitmentSecret, error) {
	r.encKeyMtx.RLock()
	defer r.encKeyMtx.RUnlock()

	if r.encKey == nil {
		return nil, ErrStoreClosed
	}

	suffix := "/" + strings.ToLower(bidder)
	secrets := make([]domain.CommitmentSecret, 0)
	if err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(secretsBucket)
		if bucket == nil {
			return ErrBucketNotFound
		}

		return bucket.ForEach(func(k, v []byte) error {
			if !strings.HasSuffix(string(k), suffix) {
				return nil
			}
			s, err := r.decrypt(v)
			if err != nil {
				return fmt.Errorf("reading secret %s: %w", k, err)
			}
			secrets = append(secrets, *s)
			return nil
		})
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(secrets, func(i, j int) bool {
		return secrets[i].CreatedAt.Before(secrets[j].CreatedAt)
	})
	return secrets, nil
}

// Close closes the underlying database and zeroes the encryption key stored
// in memory.
func (r *secretRepositoryImpl) Close() {
	r.encKeyMtx.Lock()
	defer r.encKeyMtx.Unlock()

	if r.encKey == nil {
		return
	}
	r.encKey.Zero()
	r.encKey = nil
	r.db.Close()
}

func (r *secretRepositoryImpl) decrypt(encrypted []byte) (*domain.CommitmentSecret, error) {
	buf, err := r.encKey.Decrypt(encrypted)
	if err != nil {
		return nil, err
	}
	var stored storedSecret
	if err := json.Unmarshal(buf, &stored); err != nil {
		return nil, err
	}
	return stored.toDomain()
}
