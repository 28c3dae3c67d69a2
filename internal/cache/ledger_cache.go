package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"railway-reservation/internal/model"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

const LedgerKey = "reservation:ledger"

type LedgerCache interface {
	// 寫入：提交後刷新快照，舊版本不覆蓋新版本
	Store(ctx context.Context, ledger *model.Ledger) error
	// 讀取：不存在時回傳 ErrCacheMiss
	Load(ctx context.Context) (*model.Ledger, error)
	Invalidate(ctx context.Context) error
}

type RedisLedgerCacheImpl struct {
	client *redis.Client
	key    string
}

func NewRedisLedgerCache(client *redis.Client) LedgerCache {
	return &RedisLedgerCacheImpl{
		client: client,
		key:    LedgerKey,
	}
}

/*
*

	以 version (updated_at 的 UnixNano) 判斷新舊，兩個交易提交後的刷新順序可能顛倒
	1. 讀取目前版本
	2. 較舊的快照直接忽略
	3. 寫入所有欄位
*/
var storeScript = redis.NewScript(`
	local key = KEYS[1]
	local version = tonumber(ARGV[1])

	local current = redis.call('HGET', key, 'version')
	if current and tonumber(current) > version then
		return 0
	end

	redis.call('HSET', key,
		'version', ARGV[1],
		'confirmed', ARGV[2],
		'rac', ARGV[3],
		'waiting', ARGV[4],
		'rac_number', ARGV[5],
		'waiting_number', ARGV[6])
	return 1
`)

func (c *RedisLedgerCacheImpl) Store(ctx context.Context, ledger *model.Ledger) error {
	return storeScript.Run(ctx, c.client, []string{c.key},
		ledger.UpdatedAt.UnixNano(),
		ledger.ConfirmedRemaining,
		ledger.RACRemaining,
		ledger.WaitingRemaining,
		ledger.CurrentRACNumber,
		ledger.CurrentWaitingNumber,
	).Err()
}

func (c *RedisLedgerCacheImpl) Load(ctx context.Context) (*model.Ledger, error) {
	result, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return nil, apperrors.ErrCacheMiss
	}

	var ledger model.Ledger
	fields := map[string]*int{
		"confirmed":      &ledger.ConfirmedRemaining,
		"rac":            &ledger.RACRemaining,
		"waiting":        &ledger.WaitingRemaining,
		"rac_number":     &ledger.CurrentRACNumber,
		"waiting_number": &ledger.CurrentWaitingNumber,
	}

	for name, dst := range fields {
		n, err := strconv.Atoi(result[name])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", name, err)
		}
		*dst = n
	}

	version, err := strconv.ParseInt(result["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version: %v", err)
	}
	ledger.UpdatedAt = time.Unix(0, version).UTC()

	return &ledger, nil
}

func (c *RedisLedgerCacheImpl) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
