package facilitydex

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/app"
	"github.com/kailas-cloud/facilitydex/internal/config"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
	"github.com/kailas-cloud/facilitydex/internal/logger"
	indexinguc "github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
)

// Public aliases of the types crossing the client API.
type (
	Dataset      = domain.Dataset
	Row          = domain.Row
	Report       = indexinguc.Report
	SearchParams = request.Params
	Page         = result.Page
	Facility     = result.Facility
	Suggestions  = result.Suggestions
)

// Sentinel errors callers can match with errors.Is.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrMissingTranslation = domain.ErrMissingTranslation
	ErrDumpLimitExceeded  = domain.ErrDumpLimitExceeded
)

// Client is the facilitydex SDK entry point. It runs indexing, search and
// dumps in process against Redis or an in-memory index.
type Client struct {
	app    *app.App
	logger *zap.Logger
}

// New creates a Client and connects to the database.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("facilitydex: database required (use WithRedis or WithMemory)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	conf := config.Config{
		Database: config.DatabaseConfig{
			Driver:   cfg.driver,
			Addrs:    cfg.addrs,
			Password: cfg.password,
		},
		Index: config.IndexConfig{
			Namespace:    cfg.namespace,
			Locales:      cfg.locales,
			DumpPageSize: cfg.pageSize,
			DumpMaxRows:  cfg.maxRows,
		},
	}
	conf.ApplyDefaults()
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("facilitydex: %w", err)
	}

	a, err := app.New(ctx, conf, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("facilitydex: %w", err)
	}
	return &Client{app: a, logger: cfg.logger}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	c.app.Close()
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.app.Store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Index replaces the index contents with ds.
func (c *Client) Index(ctx context.Context, ds *Dataset) (*Report, error) {
	return c.app.Indexing.Run(c.with(ctx), ds)
}

// IndexFrom loads a dataset from a file path or s3://bucket/key and indexes it.
func (c *Client) IndexFrom(ctx context.Context, location string) (*Report, error) {
	ctx = c.with(ctx)
	ds, err := c.app.Datasets.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return c.app.Indexing.Run(ctx, ds)
}

// Reset leaves an empty index.
func (c *Client) Reset(ctx context.Context) error {
	return c.app.Indexing.Reset(c.with(ctx))
}

// Search runs one facility search page.
func (c *Client) Search(ctx context.Context, p SearchParams) (*Page, error) {
	req, err := request.New(p)
	if err != nil {
		return nil, err
	}
	return c.app.Search.Search(ctx, &req)
}

// Suggest returns facility, category and location suggestions for p.Query.
func (c *Client) Suggest(ctx context.Context, p SearchParams, locale string) (*Suggestions, error) {
	req, err := request.New(p)
	if err != nil {
		return nil, err
	}
	return c.app.Search.Suggest(ctx, &req, locale)
}

// Facility returns one facility by id.
func (c *Client) Facility(ctx context.Context, id int) (Facility, error) {
	return c.app.Search.GetFacility(ctx, id)
}

// Dump writes every facility matching p to w as CSV and returns the row count.
func (c *Client) Dump(ctx context.Context, p SearchParams, w io.Writer) (int, error) {
	req, err := request.New(p)
	if err != nil {
		return 0, err
	}
	return c.app.Dump.Dump(c.with(ctx), &req, w)
}

func (c *Client) with(ctx context.Context) context.Context {
	return logger.ContextWithLogger(ctx, c.logger)
}
