package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Keys for Redis
	ledgerKey        = "ledger"
	leaderboardKey   = "leaderboard"
	balancesKey      = "balances"
	transfersKey     = "transfers"
	sessionKeyPrefix = "session:"

	defaultMinBackoff  = time.Millisecond
	defaultMaxBackoff  = 50 * time.Millisecond
	defaultJournalSize = 1000
	defaultListLimit   = 20
)

// Config holds configuration for the Redis state repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxRetries bounds how often an operation is replayed after losing a race.
	// Zero retries until the context is done.
	MaxRetries int

	// MinBackoff and MaxBackoff bound the jittered wait between replays
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// JournalSize is how many transfers are kept
	JournalSize int64
}

// redisRepository implements the Repository interface using Redis
// optimistic transactions (WATCH/MULTI/EXEC)
type redisRepository struct {
	client      *redis.Client
	maxRetries  int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	journalSize int64
}

// NewRedis creates a new Redis-backed state repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	repo := &redisRepository{
		client:      cfg.RedisClient,
		maxRetries:  cfg.MaxRetries,
		minBackoff:  cfg.MinBackoff,
		maxBackoff:  cfg.MaxBackoff,
		journalSize: cfg.JournalSize,
	}
	if repo.minBackoff <= 0 {
		repo.minBackoff = defaultMinBackoff
	}
	if repo.maxBackoff < repo.minBackoff {
		repo.maxBackoff = max(defaultMaxBackoff, repo.minBackoff)
	}
	if repo.journalSize <= 0 {
		repo.journalSize = defaultJournalSize
	}

	return repo, nil
}

func sessionKey(player models.Address) string {
	return sessionKeyPrefix + player.String()
}

// Execute runs input.Fn inside an optimistic transaction, replaying it after a
// jittered backoff when another writer commits to a watched key first
func (r *redisRepository) Execute(ctx context.Context, input *ExecuteInput) error {
	if input == nil || input.Fn == nil {
		return errors.New("input and fn cannot be nil")
	}

	keys := watchedKeys(input)
	backoff := r.minBackoff

	for attempt := 1; ; attempt++ {
		err := r.client.Watch(ctx, func(rtx *redis.Tx) error {
			return r.execute(ctx, rtx, input)
		}, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			if err != nil && attempt > 1 && ctx.Err() != nil {
				return fmt.Errorf("%w: %w", ErrConflict, ctx.Err())
			}
			return err
		}

		if r.maxRetries > 0 && attempt >= r.maxRetries {
			return ErrConflict
		}

		wait := backoff/2 + rand.N(backoff/2+1)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrConflict, ctx.Err())
		case <-time.After(wait):
		}

		backoff = min(backoff*2, r.maxBackoff)
	}
}

// watchedKeys lists the keys an operation reads, so a commit to any of them
// by another writer replays it
func watchedKeys(input *ExecuteInput) []string {
	var keys []string
	if input.Records.Has(RecordLedger) {
		keys = append(keys, ledgerKey)
	}
	if input.Records.Has(RecordLeaderboard) {
		keys = append(keys, leaderboardKey)
	}
	if input.Records.Has(RecordBalances) {
		keys = append(keys, balancesKey)
	}
	if !input.Player.IsZero() {
		keys = append(keys, sessionKey(input.Player))
	}
	return keys
}

// snapshot keeps the encoded records as loaded so only changed ones are written
type snapshot struct {
	ledger      []byte
	leaderboard []byte
	session     []byte
}

func (r *redisRepository) execute(ctx context.Context, rtx *redis.Tx, input *ExecuteInput) error {
	var before snapshot
	var ledger *models.GlobalLedger
	var leaderboard *models.Leaderboard
	var session *models.PlayerSession
	var err error

	if input.Records.Has(RecordLedger) {
		if before.ledger, err = r.load(ctx, rtx, ledgerKey, &ledger); err != nil {
			return err
		}
	}
	if input.Records.Has(RecordLeaderboard) {
		if before.leaderboard, err = r.load(ctx, rtx, leaderboardKey, &leaderboard); err != nil {
			return err
		}
	}
	if !input.Player.IsZero() {
		if before.session, err = r.load(ctx, rtx, sessionKey(input.Player), &session); err != nil {
			return err
		}
	}

	tx := newTx(input.Records, ledger, leaderboard, session, func(addr models.Address) (uint64, error) {
		return r.loadBalance(ctx, rtx, addr)
	})

	if err := input.Fn(tx); err != nil {
		return err
	}

	if tx.Session != nil && tx.Session.Owner != input.Player {
		return fmt.Errorf("%w: %s", ErrSessionOwner, tx.Session.Owner)
	}

	if !input.Records.Has(RecordLedger) && tx.Ledger != nil {
		return fmt.Errorf("%w: ledger", ErrRecordNotLoaded)
	}
	if !input.Records.Has(RecordLeaderboard) && tx.Leaderboard != nil {
		return fmt.Errorf("%w: leaderboard", ErrRecordNotLoaded)
	}

	writes := make(map[string][]byte)
	if err := changed(writes, ledgerKey, before.ledger, tx.Ledger); err != nil {
		return err
	}
	if err := changed(writes, leaderboardKey, before.leaderboard, tx.Leaderboard); err != nil {
		return err
	}
	if !input.Player.IsZero() {
		if err := changed(writes, sessionKey(input.Player), before.session, tx.Session); err != nil {
			return err
		}
	}

	var balanceWrites []any
	for addr, amount := range tx.changedBalances() {
		balanceWrites = append(balanceWrites, addr.String(), strconv.FormatUint(amount, 10))
	}

	journal := make([]any, 0, len(tx.transfers))
	for _, t := range tx.transfers {
		transferJSON, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal transfer: %w", err)
		}
		journal = append(journal, transferJSON)
	}

	if len(writes) == 0 && len(balanceWrites) == 0 && len(journal) == 0 {
		return nil
	}

	_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range writes {
			pipe.Set(ctx, key, value, 0)
		}
		if len(balanceWrites) > 0 {
			pipe.HSet(ctx, balancesKey, balanceWrites...)
		}
		if len(journal) > 0 {
			pipe.LPush(ctx, transfersKey, journal...)
			pipe.LTrim(ctx, transfersKey, 0, r.journalSize-1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

// load reads a JSON record into *dst, leaving it nil when the key is missing
func (r *redisRepository) load(ctx context.Context, rtx *redis.Tx, key string, dst any) ([]byte, error) {
	data, err := rtx.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return data, nil
}

func (r *redisRepository) loadBalance(ctx context.Context, rtx *redis.Tx, addr models.Address) (uint64, error) {
	value, err := rtx.HGet(ctx, balancesKey, addr.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance of %s: %w", addr, err)
	}

	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance of %s: %w", addr, err)
	}

	return amount, nil
}

// changed records key for writing when record encodes differently than before
func changed[T any](writes map[string][]byte, key string, before []byte, record *T) error {
	if record == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if !bytes.Equal(data, before) {
		writes[key] = data
	}
	return nil
}

// ListTransfers returns the most recent journalled transfers, newest first
func (r *redisRepository) ListTransfers(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error) {
	limit := int64(defaultListLimit)
	if input != nil && input.Limit > 0 {
		limit = input.Limit
	}

	values, err := r.client.LRange(ctx, transfersKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}

	transfers := make([]*models.Transfer, 0, len(values))
	for _, value := range values {
		var t models.Transfer
		if err := json.Unmarshal([]byte(value), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transfer: %w", err)
		}
		transfers = append(transfers, &t)
	}

	return &ListTransfersOutput{
		Transfers: transfers,
	}, nil
}
