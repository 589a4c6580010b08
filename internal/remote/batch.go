package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/omarluq/holicache/internal/content"
)

// batchConcurrency bounds in-flight queries issued by one GetBatch call.
const batchConcurrency = 4

// groupKey identifies requests that can share one IN query.
type groupKey struct {
	country string
	locale  string
}

// GetBatch returns one entry per key, in input order; nil means not found.
//
// Keys sharing a country and locale are fetched with a single
// holiday_name IN (...) query. A group whose query fails falls back to
// per-key Get calls, so one bad group never hides the others. Above the
// batch threshold grouping is skipped and every key is fetched on its own.
//
// The returned error joins per-key failures; entries for keys that failed
// are nil, and all other entries are valid.
func (c *Client) GetBatch(ctx context.Context, keys []content.Key) ([]*Row, error) {
	results := make([]*Row, len(keys))
	if len(keys) == 0 {
		return results, nil
	}

	indexes := lo.Range(len(keys))
	if len(keys) > c.batchThreshold {
		c.logger.Debug().Int("requests", len(keys)).Int("threshold", c.batchThreshold).Msg("batch above threshold, fetching individually")
		return results, c.getEach(ctx, keys, indexes, results)
	}

	groups := lo.GroupBy(indexes, func(i int) groupKey {
		return groupKey{country: keys[i].Country.Value, locale: keys[i].Locale}
	})

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for gk, members := range groups {
		g.Go(func() error {
			err := c.getGroup(gctx, gk, keys, members, results)
			if err == nil {
				return nil
			}
			c.logger.Warn().Err(err).
				Str("country", gk.country).
				Str("locale", gk.locale).
				Int("requests", len(members)).
				Msg("batch group query failed, falling back to individual gets")
			if eachErr := c.getEach(gctx, keys, members, results); eachErr != nil {
				mu.Lock()
				errs = append(errs, eachErr)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// getGroup fetches every key in members with one IN query.
func (c *Client) getGroup(ctx context.Context, gk groupKey, keys []content.Key, members []int, results []*Row) error {
	names := lo.Uniq(lo.Map(members, func(i int, _ int) string { return keys[i].Holiday }))

	var rows []Row
	err := c.call(ctx, func() error {
		body, _, execErr := c.db.From(c.table).
			Select("*", "", false).
			Eq("country_name", gk.country).
			Eq("locale", gk.locale).
			In("holiday_name", names).
			Execute()
		if execErr != nil {
			return classify(execErr)
		}
		return json.Unmarshal(body, &rows)
	})
	if err != nil {
		return fmt.Errorf("remote: batch %s/%s: %w", gk.country, gk.locale, err)
	}

	byName := lo.KeyBy(rows, func(r Row) string { return r.HolidayName })
	for _, i := range members {
		if row, ok := byName[keys[i].Holiday]; ok {
			results[i] = &row
		}
	}
	return nil
}

// getEach fetches the keys at indexes one by one.
func (c *Client) getEach(ctx context.Context, keys []content.Key, indexes []int, results []*Row) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, i := range indexes {
		g.Go(func() error {
			row, err := c.Get(gctx, keys[i])
			switch {
			case err == nil:
				results[i] = &row
			case errors.Is(err, ErrNotFound):
			default:
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
