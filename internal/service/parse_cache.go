package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/gw-dashboard-api/pkg/ingest"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// ParseCache memoizes decoded uploads by content hash. Concurrent decodes of
// identical bytes collapse into one; failures are never cached.
type ParseCache struct {
	cache  *CacheService
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewParseCache constructs a memo over cache. A nil or disabled cache still
// deduplicates in-flight decodes.
func NewParseCache(cache *CacheService, ttl time.Duration, logger *zap.Logger) *ParseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParseCache{cache: cache, ttl: ttl, logger: logger}
}

// Decode returns the dataset for content and whether it came from a previous
// parse.
func (p *ParseCache) Decode(ctx context.Context, filename string, format ingest.Format, content []byte) (tabular.Dataset, bool, error) {
	sum := sha256.Sum256(content)
	key := p.cache.Key("parse", string(format), hex.EncodeToString(sum[:]))

	var cached tabular.Dataset
	if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
		cached.Name = filename
		return cached, true, nil
	}

	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		ds, err := ingest.Decode(filename, format, content)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(ctx, key, ds, p.ttl); err != nil {
			p.logger.Warn("parse cache store failed", zap.String("file", filename), zap.Error(err))
		}
		return ds, nil
	})
	if err != nil {
		var parseErr *ingest.ParseError
		if errors.As(err, &parseErr) && parseErr.File != filename {
			return tabular.Dataset{}, false, &ingest.ParseError{File: filename, Err: parseErr.Err}
		}
		return tabular.Dataset{}, false, err
	}
	ds := v.(tabular.Dataset)
	ds.Name = filename
	return ds, shared, nil
}
