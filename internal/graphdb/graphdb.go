// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphdb mirrors edge lists into Neo4j. A Client with no URI
// configured is nil and every sync on it is a no-op.
package graphdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pdiddy/coauthor-graph/internal/logger"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// BatchSize bounds the rows sent in one UNWIND statement.
const BatchSize = 1000

const defaultTimeout = 10 * time.Second

// Client holds a Neo4j driver and the target database.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

// NewClient connects to cfg.URI and verifies connectivity. It returns a nil
// Client and no error when cfg.URI is empty.
func NewClient(ctx context.Context, cfg types.Neo4jConfig, log *logger.Logger) (*Client, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, nil
	}
	if log == nil {
		log = logger.Nop()
	}

	user := strings.TrimSpace(cfg.User)
	if user == "" {
		user = "neo4j"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, cfg.Password, ""), func(c *neo4j.Config) {
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("graphdb: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graphdb: verify connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: strings.TrimSpace(cfg.Database),
		log:      log.With("client", "neo4j"),
	}, nil
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

const coAuthorCypher = `
UNWIND $rows AS r
MERGE (a:Author {name: r.source})
MERGE (b:Author {name: r.target})
MERGE (a)-[e:CO_AUTHORED {pdf_url: r.pdf_url}]->(b)
SET e.title = r.title,
    e.published = r.published,
    e.primary_category = r.primary_category,
    e.run_id = r.run_id
`

const paperCypher = `
UNWIND $rows AS r
MERGE (a:Publication {title: r.source})
MERGE (b:Publication {title: r.target})
MERGE (a)-[e:SHARES_AUTHOR]->(b)
SET e.run_id = r.run_id
`

// CoAuthorRows converts edges into UNWIND parameter rows.
func CoAuthorRows(runID string, edges []types.Edge) []map[string]any {
	rows := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		published := ""
		if !e.Published.IsZero() {
			published = e.Published.UTC().Format(time.RFC3339)
		}
		rows = append(rows, map[string]any{
			"source":           e.Source,
			"target":           e.Target,
			"pdf_url":          e.PDFURL,
			"title":            e.Title,
			"published":        published,
			"primary_category": e.PrimaryCategory,
			"run_id":           runID,
		})
	}
	return rows
}

// PaperRows converts paper edges into UNWIND parameter rows.
func PaperRows(runID string, edges []types.PaperEdge) []map[string]any {
	rows := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, map[string]any{
			"source": e.Source,
			"target": e.Target,
			"run_id": runID,
		})
	}
	return rows
}

// Batches splits rows into slices of at most size rows.
func Batches(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = BatchSize
	}
	var out [][]map[string]any
	for len(rows) > 0 {
		n := min(size, len(rows))
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}

// SyncCoAuthors merges one CO_AUTHORED relationship per edge and PDF URL.
// Re-running the same edges does not duplicate relationships.
func (c *Client) SyncCoAuthors(ctx context.Context, runID string, edges []types.Edge) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	c.ensureConstraint(ctx, `CREATE CONSTRAINT author_name_unique IF NOT EXISTS FOR (a:Author) REQUIRE a.name IS UNIQUE`)
	return c.write(ctx, coAuthorCypher, CoAuthorRows(runID, edges))
}

// SyncPaperEdges merges one SHARES_AUTHOR relationship per ordered pair.
func (c *Client) SyncPaperEdges(ctx context.Context, runID string, edges []types.PaperEdge) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	return c.write(ctx, paperCypher, PaperRows(runID, edges))
}

func (c *Client) session(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
}

func (c *Client) ensureConstraint(ctx context.Context, cypher string) {
	session := c.session(ctx)
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, nil)
	if err != nil {
		c.log.Warn("neo4j schema init failed (continuing)", "error", err)
		return
	}
	if _, err := res.Consume(ctx); err != nil {
		c.log.Debug("neo4j schema init result not consumed", "error", err)
	}
}

func (c *Client) write(ctx context.Context, cypher string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	session := c.session(ctx)
	defer session.Close(ctx)

	for i, batch := range Batches(rows, BatchSize) {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, cypher, map[string]any{"rows": batch})
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("graphdb: batch %d: %w", i, err)
		}
	}
	c.log.Info("neo4j sync finished", "rows", len(rows))
	return nil
}
