package phonegen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/telforge/phonegen/internal/engine"
	"github.com/telforge/phonegen/internal/index"
	"github.com/telforge/phonegen/internal/repository/artifact"
	"github.com/telforge/phonegen/internal/repository/records"
	cataloguc "github.com/telforge/phonegen/internal/usecase/catalog"
	generateuc "github.com/telforge/phonegen/internal/usecase/generate"
)

// Carrier codes as encoded in the allocation table.
const (
	OperatorMobile    = 1
	OperatorUnicom    = 2
	OperatorTelecom   = 3
	OperatorBroadcast = 4
	OperatorVirtual   = 5
)

// Request selects the numbers to enumerate. Prefix, Province and City are
// required; Operators narrows the carriers (empty matches all); Trailing4
// pins the last four digits, Trailing3 pins the three digits before a free
// last digit. At most one trailing constraint may be set.
type Request struct {
	Prefix    string
	Province  string
	City      string
	Operators []int
	Trailing4 string
	Trailing3 string
}

// File describes one artifact produced by Generate.
type File struct {
	Ordinal int
	Name    string
	Path    string
	Lines   int64
	Bytes   int64
}

// Result is the outcome of one Generate call. Concatenating Files in
// ordinal order reproduces the full enumeration sequence.
type Result struct {
	Total    int64
	Duration time.Duration
	Files    []File
}

// Client is the in-process phonegen entry point. It mirrors the HTTP
// service: same lookup index, same enumeration engine, same file layout.
type Client struct {
	store      *records.Store
	dispatcher *engine.Dispatcher
	artifacts  *artifact.Store
	catalog    *cataloguc.Service
	generator  *generateuc.Service
}

// Open loads the allocation table and prepares the enumeration engine.
func Open(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	store, err := records.Open(cfg.dbPath)
	if err != nil {
		return nil, fmt.Errorf("phonegen: open record store: %w", err)
	}

	recs, err := store.LoadAll(context.Background())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("phonegen: load allocation records: %w", err)
	}
	ix, err := index.New(recs)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("phonegen: build lookup index: %w", err)
	}

	dispatcher, err := engine.NewDispatcher(cfg.workers, cfg.logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("phonegen: create worker pool: %w", err)
	}

	artifacts, err := artifact.NewStore(cfg.outputDir, cfg.maxFileSize, 0, cfg.logger)
	if err != nil {
		dispatcher.Close()
		_ = store.Close()
		return nil, fmt.Errorf("phonegen: prepare output dir: %w", err)
	}

	return &Client{
		store:      store,
		dispatcher: dispatcher,
		artifacts:  artifacts,
		catalog:    cataloguc.New(ix),
		generator:  generateuc.New(ix, dispatcher, artifacts, cfg.ceiling, cfg.logger),
	}, nil
}

// Close releases the worker pool and the record store.
func (c *Client) Close() error {
	c.dispatcher.Close()
	return c.store.Close()
}

// Provinces returns all covered provinces, sorted.
func (c *Client) Provinces() []string {
	return c.catalog.Provinces()
}

// Cities returns the covered cities of province, sorted. An unknown
// province yields an empty list.
func (c *Client) Cities(province string) []string {
	return c.catalog.Cities(province)
}

// Generate enumerates every number matching req and writes the result to
// text files under the output directory. A request that matches no
// allocation block succeeds with an empty Result.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	out, err := c.generator.Generate(ctx, generateuc.Request{
		Prefix:         req.Prefix,
		Province:       req.Province,
		City:           req.City,
		Operators:      req.Operators,
		TrailingFixed4: req.Trailing4,
		TrailingFixed3: req.Trailing3,
	})
	if err != nil {
		return Result{}, err
	}

	files := make([]File, len(out.Manifest.Files))
	for i, f := range out.Manifest.Files {
		files[i] = File{
			Ordinal: f.Ordinal,
			Name:    f.Name,
			Path:    filepath.Join(c.artifacts.Dir(), f.Name),
			Lines:   f.Lines,
			Bytes:   f.Bytes,
		}
	}
	return Result{
		Total:    out.Manifest.TotalLines,
		Duration: out.Duration,
		Files:    files,
	}, nil
}
