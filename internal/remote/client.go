// Package remote is the client for the authoritative description store, a
// Supabase (PostgREST) table keyed by holiday name, country name and locale.
//
// Every call passes through a circuit breaker. Expected outcomes such as
// ErrNotFound and ErrDuplicate are returned to the caller but never count as
// failures.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/health"
)

// Row is a description row as stored remotely.
type Row struct {
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	LastUsed    *time.Time `json:"last_used,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	ID          string     `json:"id,omitempty"`
	HolidayID   string     `json:"holiday_id,omitempty"`
	HolidayName string     `json:"holiday_name"`
	CountryName string     `json:"country_name"`
	Locale      string     `json:"locale"`
	Description string     `json:"description"`
	ModifiedBy  string     `json:"modified_by,omitempty"`
	Confidence  float64    `json:"confidence"`
	IsManual    bool       `json:"is_manual"`
}

// Fields is a partial update keyed by column name.
type Fields map[string]any

// Filter narrows ListPaged. Zero values do not filter.
type Filter struct {
	Manual  *bool
	Country string
	Locale  string
	Search  string
}

// Page is one page of ListPaged results.
type Page struct {
	Data       []Row `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Querier builds PostgREST queries. *supabase.Client and *postgrest.Client
// both satisfy it.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// Client performs CRUD against the remote description table.
type Client struct {
	checkedAt      time.Time
	db             Querier
	breaker        *health.CircuitBreaker
	logger         *zerolog.Logger
	now            func() time.Time
	table          string
	healthTTL      time.Duration
	batchThreshold int
	healthMu       sync.Mutex
	healthy        bool
}

// New connects to Supabase using cfg.
func New(cfg Config, breakerCfg health.CircuitBreakerConfig, logger *zerolog.Logger) (*Client, error) {
	if !cfg.IsConfigured() {
		return nil, ErrNotConfigured
	}
	sb, err := supabase.NewClient(cfg.URL, cfg.ServiceKey, &supabase.ClientOptions{Schema: cfg.GetSchema()})
	if err != nil {
		return nil, fmt.Errorf("remote: create supabase client: %w", err)
	}
	return NewWithQuerier(sb, cfg, breakerCfg, logger), nil
}

// NewWithQuerier builds a Client over an existing query builder.
func NewWithQuerier(db Querier, cfg Config, breakerCfg health.CircuitBreakerConfig, logger *zerolog.Logger) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	log := logger.With().Str("component", "remote").Str("table", cfg.GetTable()).Logger()
	return &Client{
		db:             db,
		breaker:        health.NewCircuitBreaker("remote:"+cfg.GetTable(), breakerCfg, &log),
		logger:         &log,
		now:            time.Now,
		table:          cfg.GetTable(),
		healthTTL:      cfg.GetHealthTTL(),
		batchThreshold: cfg.GetBatchThreshold(),
	}
}

// Get returns the row for key. Returns ErrNotFound when no row matches.
func (c *Client) Get(ctx context.Context, key content.Key) (Row, error) {
	var body []byte
	err := c.call(ctx, func() error {
		var execErr error
		body, _, execErr = c.db.From(c.table).
			Select("*", "", false).
			Eq("holiday_name", key.Holiday).
			Eq("country_name", key.Country.Value).
			Eq("locale", key.Locale).
			Single().
			Execute()
		return classify(execErr)
	})
	if err != nil {
		return Row{}, fmt.Errorf("remote: get %q: %w", key.String(), err)
	}

	var row Row
	if err := json.Unmarshal(body, &row); err != nil {
		return Row{}, fmt.Errorf("remote: decode %q: %w", key.String(), err)
	}
	return row, nil
}

// Create inserts row. A unique key violation returns ErrDuplicate; there is
// no implicit upsert.
func (c *Client) Create(ctx context.Context, row Row) (Row, error) {
	row.ID = ""
	var rows []Row
	err := c.call(ctx, func() error {
		body, _, execErr := c.db.From(c.table).
			Insert(row, false, "", "representation", "").
			Execute()
		if execErr != nil {
			return classify(execErr)
		}
		return json.Unmarshal(body, &rows)
	})
	if err != nil {
		return Row{}, fmt.Errorf("remote: create %s-%s-%s: %w", row.HolidayName, row.CountryName, row.Locale, err)
	}
	if len(rows) == 0 {
		return row, nil
	}
	return rows[0], nil
}

// Update applies fields to the row with primary key id. Returns ErrNotFound
// when no row has that id.
func (c *Client) Update(ctx context.Context, id string, fields Fields) (Row, error) {
	var rows []Row
	err := c.call(ctx, func() error {
		body, _, execErr := c.db.From(c.table).
			Update(fields, "representation", "").
			Eq("id", id).
			Execute()
		if execErr != nil {
			return classify(execErr)
		}
		return json.Unmarshal(body, &rows)
	})
	if err != nil {
		return Row{}, fmt.Errorf("remote: update %s: %w", id, err)
	}
	if len(rows) == 0 {
		return Row{}, fmt.Errorf("remote: update %s: %w", id, ErrNotFound)
	}
	return rows[0], nil
}

// Delete removes the row with primary key id and reports whether one existed.
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	var rows []Row
	err := c.call(ctx, func() error {
		body, _, execErr := c.db.From(c.table).
			Delete("representation", "").
			Eq("id", id).
			Execute()
		if execErr != nil {
			return classify(execErr)
		}
		return json.Unmarshal(body, &rows)
	})
	if err != nil {
		return false, fmt.Errorf("remote: delete %s: %w", id, err)
	}
	return len(rows) > 0, nil
}

// ListPaged returns one page of rows, most recently updated first.
// page is 1-based; limit defaults to 20 and is capped at 100.
func (c *Client) ListPaged(ctx context.Context, filter Filter, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)
	from := (page - 1) * limit

	var rows []Row
	var total int64
	err := c.call(ctx, func() error {
		q := c.db.From(c.table).Select("*", "exact", false)
		if filter.Country != "" {
			q = q.Eq("country_name", filter.Country)
		}
		if filter.Locale != "" {
			q = q.Eq("locale", filter.Locale)
		}
		if filter.Manual != nil {
			q = q.Eq("is_manual", strconv.FormatBool(*filter.Manual))
		}
		if term := sanitizeSearch(filter.Search); term != "" {
			q = q.Or(fmt.Sprintf("holiday_name.ilike.*%s*,description.ilike.*%s*", term, term), "")
		}
		body, count, execErr := q.
			Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
			Range(from, from+limit-1, "").
			Execute()
		if execErr != nil {
			return classify(execErr)
		}
		total = count
		return json.Unmarshal(body, &rows)
	})
	if err != nil {
		return Page{}, fmt.Errorf("remote: list page %d: %w", page, err)
	}

	if rows == nil {
		rows = []Row{}
	}
	return Page{
		Data:       rows,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Ping runs the cheapest possible query against the table.
func (c *Client) Ping(ctx context.Context) error {
	err := c.call(ctx, func() error {
		_, _, execErr := c.db.From(c.table).
			Select("id", "", false).
			Limit(1, "").
			Execute()
		return classify(execErr)
	})
	if err != nil {
		return fmt.Errorf("remote: ping: %w", err)
	}
	return nil
}

// IsConnectionHealthy reports reachability, probing at most once per health TTL.
// The engine does not call it: its request path reads health.Monitor, which
// caches the result of the same Ping on its own interval.
func (c *Client) IsConnectionHealthy(ctx context.Context) bool {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	if !c.checkedAt.IsZero() && c.now().Sub(c.checkedAt) < c.healthTTL {
		return c.healthy
	}

	err := c.Ping(ctx)
	c.healthy = err == nil
	c.checkedAt = c.now()
	if err != nil {
		c.logger.Warn().Err(err).Msg("remote health probe failed")
	}
	return c.healthy
}

// BreakerState exposes the circuit state for status reporting.
func (c *Client) BreakerState() health.State {
	return c.breaker.State()
}

// call runs fn through the circuit breaker, abandoning it if ctx ends first.
// postgrest-go has no context support, so an abandoned fn finishes in the
// background and its result is discarded.
func (c *Client) call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.breaker.Run(func() error {
		done := make(chan error, 1)
		go func() { done <- fn() }()
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}, isBenign)
}

// sanitizeSearch strips characters that would break PostgREST's or=() syntax.
func sanitizeSearch(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '"', '\\':
			return -1
		}
		return r
	}, s))
}
