package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-auctions/internal/core/application"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

const (
	// DatadirKey is the local data directory holding the reference lists and
	// the commitment secrets
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// LedgerEndpointKey is the http(s) url of the ledger gateway JSON-RPC
	// interface, ie. http://localhost:8545
	LedgerEndpointKey = "LEDGER_ENDPOINT"
	// LedgerRequestTimeoutKey is the timeout in milliseconds of a single
	// request to the ledger gateway
	LedgerRequestTimeoutKey = "LEDGER_REQUEST_TIMEOUT"
	// LedgerRateLimitKey is the max number of requests per second sent to the
	// ledger gateway, 0 means unlimited
	LedgerRateLimitKey = "LEDGER_RATE_LIMIT"
	// LedgerRateBurstKey is the max number of requests sent at once
	LedgerRateBurstKey = "LEDGER_RATE_BURST"
	// ReceiptPollIntervalKey is the interval in milliseconds between two
	// polls for a transaction receipt
	ReceiptPollIntervalKey = "RECEIPT_POLL_INTERVAL"
	// ChainIDKey identifies the chain the contracts are deployed to. Tracked
	// lists are scoped per chain
	ChainIDKey = "CHAIN_ID"
	// AccountKey is the default account used to bid and to look up the
	// tracked lists
	AccountKey = "ACCOUNT"
	// ScanFromBlockKey is the first block scanned for events, usually the
	// deployment height of the contracts
	ScanFromBlockKey = "SCAN_FROM_BLOCK"
	// ScanChunkSizeKey is the max number of blocks requested per log query
	ScanChunkSizeKey = "SCAN_CHUNK_SIZE"
	// ScanConcurrencyKey is the max number of log queries in flight
	ScanConcurrencyKey = "SCAN_CONCURRENCY"
	// SecretsPasswordKey encrypts the commitment secrets at rest. If not set
	// secrets are kept in memory only
	SecretsPasswordKey = "SECRETS_PASSWORD"

	contractKeySuffix = "_CONTRACT"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("tdex-auctions", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("AUCTIONS")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(LedgerRequestTimeoutKey, 30000)
	vip.SetDefault(LedgerRateLimitKey, 0)
	vip.SetDefault(LedgerRateBurstKey, 1)
	vip.SetDefault(ReceiptPollIntervalKey, 2000)
	vip.SetDefault(ChainIDKey, 1)
	vip.SetDefault(ScanFromBlockKey, 0)
	vip.SetDefault(ScanChunkSizeKey, 5000)
	vip.SetDefault(ScanConcurrencyKey, 4)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

// Set overrides the value of key, ie. with a command line flag.
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetMilliseconds returns the value of key as a duration in milliseconds.
func GetMilliseconds(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Millisecond
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the directory of the local stores, or an empty string if
// they are kept in memory.
func GetDbDir() string {
	if GetString(DBTypeKey) == application.DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

// ContractKey returns the key of the contract address of the given protocol,
// ie. ENGLISH_CONTRACT.
func ContractKey(tag domain.ProtocolTag) string {
	return strings.ToUpper(tag.String()) + contractKeySuffix
}

// GetContracts returns the contract addresses of the configured protocols.
func GetContracts() map[domain.ProtocolTag]string {
	contracts := make(map[domain.ProtocolTag]string)
	for _, tag := range domain.AllProtocols() {
		if addr := GetString(ContractKey(tag)); addr != "" {
			contracts[tag] = addr
		}
	}
	return contracts
}

func GetScanConfig() application.ScanConfig {
	return application.ScanConfig{
		FromBlock:   GetUint64(ScanFromBlockKey),
		ChunkSize:   GetUint64(ScanChunkSizeKey),
		Concurrency: GetInt(ScanConcurrencyKey),
	}
}

func validate() error {
	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf("unsupported db type %q", dbType)
	}
	if dbType == application.DBBadger && len(GetDatadir()) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if lvl := GetInt(LogLevelKey); lvl < 0 || lvl > 6 {
		return fmt.Errorf("%s must be in range [0, 6]", LogLevelKey)
	}

	if GetString(LedgerEndpointKey) == "" {
		return fmt.Errorf("missing ledger endpoint")
	}
	if GetInt(LedgerRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", LedgerRequestTimeoutKey)
	}
	if GetInt(ReceiptPollIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", ReceiptPollIntervalKey)
	}
	if GetFloat(LedgerRateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", LedgerRateLimitKey)
	}
	if GetInt(LedgerRateBurstKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", LedgerRateBurstKey)
	}

	contracts := GetContracts()
	if len(contracts) <= 0 {
		return fmt.Errorf("at least one auction contract address must be set")
	}
	for tag, addr := range contracts {
		if !domain.IsValidAddress(addr) {
			return fmt.Errorf("invalid %s %q", ContractKey(tag), addr)
		}
	}

	if GetInt(ScanChunkSizeKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", ScanChunkSizeKey)
	}
	if GetInt(ScanConcurrencyKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", ScanConcurrencyKey)
	}

	if account := GetString(AccountKey); account != "" && !domain.IsValidAddress(account) {
		return fmt.Errorf("invalid account %q", account)
	}

	return nil
}

func initDatadir() error {
	dbDir := GetDbDir()
	if dbDir == "" {
		return nil
	}
	return makeDirectoryIfNotExists(dbDir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
