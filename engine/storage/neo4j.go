package storage

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// result is the minimal interface needed from a neo4j result.
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Consume(ctx context.Context) (neo4j.ResultSummary, error)
}

// runner is the minimal interface needed from a neo4j session.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

// sessionAdapter adapts neo4j.SessionWithContext to runner.
type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *sessionAdapter) Close(ctx context.Context) error { return a.sess.Close(ctx) }

// Neo4j stores each item as a (:StorageItem {namespace, key, value}) node.
type Neo4j struct {
	driver     neo4j.DriverWithContext
	newSession func(ctx context.Context) runner // for testing
}

var _ Storage = (*Neo4j)(nil)

// OpenNeo4j connects to url and verifies connectivity.
func OpenNeo4j(ctx context.Context, url, user, pass string) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(url, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, fmt.Errorf("storage: neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("storage: neo4j connect %s: %w", url, err)
	}
	s := NewNeo4j(driver)
	if err := s.exec(ctx, `CREATE INDEX storage_item_key IF NOT EXISTS FOR (n:StorageItem) ON (n.namespace, n.key)`, nil); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return s, nil
}

// NewNeo4j wraps an existing driver.
func NewNeo4j(driver neo4j.DriverWithContext) *Neo4j {
	return &Neo4j{driver: driver}
}

func (s *Neo4j) session(ctx context.Context) runner {
	if s.newSession != nil {
		return s.newSession(ctx)
	}
	return &sessionAdapter{sess: s.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

// exec runs a write and consumes its result so server-side failures surface.
func (s *Neo4j) exec(ctx context.Context, cypher string, params map[string]any) (err error) {
	sess := s.session(ctx)
	defer func() {
		if cerr := sess.Close(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("storage: neo4j close: %w", cerr)
		}
	}()
	res, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return fmt.Errorf("storage: neo4j: %w", err)
	}
	if _, err := res.Consume(ctx); err != nil {
		return fmt.Errorf("storage: neo4j: %w", err)
	}
	return nil
}

func (s *Neo4j) GetItem(ctx context.Context, ns, key string) (string, bool, error) {
	if err := checkNS(ns); err != nil {
		return "", false, err
	}
	sess := s.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx,
		`MATCH (n:StorageItem {namespace: $ns, key: $key}) RETURN n.value AS value`,
		map[string]any{"ns": ns, "key": key})
	if err != nil {
		return "", false, fmt.Errorf("storage: neo4j get %s: %w", key, err)
	}
	if !res.Next(ctx) {
		return "", false, nil
	}
	raw, ok := res.Record().Get("value")
	if !ok {
		return "", false, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("storage: neo4j get %s: value is %T", key, raw)
	}
	return v, true, nil
}

func (s *Neo4j) SetItem(ctx context.Context, ns, key, value string) error {
	if err := checkNS(ns); err != nil {
		return err
	}
	return s.exec(ctx,
		`MERGE (n:StorageItem {namespace: $ns, key: $key}) SET n.value = $value, n.updated_at = timestamp()`,
		map[string]any{"ns": ns, "key": key, "value": value})
}

func (s *Neo4j) RemoveItem(ctx context.Context, ns, key string) error {
	if err := checkNS(ns); err != nil {
		return err
	}
	return s.exec(ctx,
		`MATCH (n:StorageItem {namespace: $ns, key: $key}) DELETE n`,
		map[string]any{"ns": ns, "key": key})
}

func (s *Neo4j) Clear(ctx context.Context, ns string) error {
	if err := checkNS(ns); err != nil {
		return err
	}
	return s.exec(ctx, `MATCH (n:StorageItem {namespace: $ns}) DELETE n`, map[string]any{"ns": ns})
}

// Close closes the driver.
func (s *Neo4j) Close(ctx context.Context) error { return s.driver.Close(ctx) }
