package console

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kioskworks/kioskctl/internal/api"
	"github.com/kioskworks/kioskctl/internal/domain"
)

// rowCache memoizes per-user capability rows so that opening a dialog for
// the same user twice does not refetch. Concurrent fetches for one user
// collapse into a single request; mutations invalidate the row.
type rowCache struct {
	client api.AccountService
	group  singleflight.Group

	mu   sync.RWMutex
	rows map[uint64]domain.CapabilitySet
}

func newRowCache(client api.AccountService) *rowCache {
	return &rowCache{client: client, rows: make(map[uint64]domain.CapabilitySet)}
}

func (rc *rowCache) get(ctx context.Context, userID uint64) (domain.CapabilitySet, error) {
	rc.mu.RLock()
	cached, ok := rc.rows[userID]
	rc.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	v, err, _ := rc.group.Do(strconv.FormatUint(userID, 10), func() (any, error) {
		set, err := rc.client.GetUserCapabilities(ctx, userID)
		if err != nil {
			return nil, err
		}
		rc.mu.Lock()
		rc.rows[userID] = set
		rc.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get capabilities for user %d: %w", userID, err)
	}
	return v.(domain.CapabilitySet).Clone(), nil
}

func (rc *rowCache) invalidate(userID uint64) {
	rc.mu.Lock()
	delete(rc.rows, userID)
	rc.mu.Unlock()
}
