package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/dockpool/dockpool/pkg/docker"
)

// ErrTenantNotFound reports that no daemon is registered under the
// requested tenant identifier. It is a client error, not a transport
// failure, and is never retried.
var ErrTenantNotFound = errors.New("tenant not found")

// Resolver maps a tenant identifier to the endpoint of its Docker
// daemon. Resolution happens once per inbound request; implementations
// must be safe for concurrent use and must not cache on behalf of the
// caller.
type Resolver interface {
	Resolve(ctx context.Context, tenant string) (docker.Endpoint, error)
}

// StaticResolver serves a fixed fleet table, typically loaded from the
// configuration file. The map is never mutated after construction.
type StaticResolver struct {
	fleet map[string]docker.Endpoint
}

// NewStaticResolver copies the fleet table so later changes to the
// argument cannot leak into running resolutions.
func NewStaticResolver(fleet map[string]docker.Endpoint) *StaticResolver {
	copied := make(map[string]docker.Endpoint, len(fleet))
	for tenant, ep := range fleet {
		copied[tenant] = ep
	}
	return &StaticResolver{fleet: copied}
}

func (r *StaticResolver) Resolve(_ context.Context, tenant string) (docker.Endpoint, error) {
	ep, ok := r.fleet[tenant]
	if !ok {
		return docker.Endpoint{}, fmt.Errorf("resolve %q: %w", tenant, ErrTenantNotFound)
	}
	return ep, nil
}

// SQLResolver looks tenants up in the daemon registry table. Rows hold
// the daemon's host address and API port; the endpoint is assembled and
// parse-checked per lookup so a bad row surfaces as an error, not a
// half-built endpoint.
type SQLResolver struct {
	db *sql.DB
}

// NewSQLResolver opens the sqlite database at path and verifies the
// connection.
func NewSQLResolver(path string) (*SQLResolver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open resolver db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping resolver db: %w", err)
	}
	return &SQLResolver{db: db}, nil
}

// Close releases the database handle.
func (r *SQLResolver) Close() error { return r.db.Close() }

func (r *SQLResolver) Resolve(ctx context.Context, tenant string) (docker.Endpoint, error) {
	var hostIP string
	var port int
	row := r.db.QueryRowContext(ctx,
		`SELECT host_ip, docker_port FROM daemon WHERE id = ?`, tenant)
	if err := row.Scan(&hostIP, &port); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docker.Endpoint{}, fmt.Errorf("resolve %q: %w", tenant, ErrTenantNotFound)
		}
		return docker.Endpoint{}, fmt.Errorf("resolve %q: %w", tenant, err)
	}

	ep, err := docker.ParseEndpoint(fmt.Sprintf("tcp://%s:%d", hostIP, port))
	if err != nil {
		log.Error("Daemon registry row is unusable", "tenant", tenant, "host", hostIP, "port", port)
		return docker.Endpoint{}, fmt.Errorf("resolve %q: %w", tenant, err)
	}
	return ep, nil
}
