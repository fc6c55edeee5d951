//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "commerce"
	pgPassword = "commerce-e2e"
	pgPort     = nat.Port("5432/tcp")
	redisPort  = nat.Port("6379/tcp")
)

type endpoint struct {
	host string
	port nat.Port
}

func (e endpoint) addr() string {
	return net.JoinHostPort(e.host, e.port.Port())
}

type environment struct {
	postgres endpoint
	redis    endpoint
}

// One postgres and one redis per test binary, reaped by ryuk when it exits. Each suite gets its own database.
var (
	envOnce sync.Once
	env     environment
	envErr  error
)

func sharedEnvironment() (environment, error) {
	envOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		env, envErr = startEnvironment(ctx)
	})
	return env, envErr
}

func startEnvironment(ctx context.Context) (environment, error) {
	pg, err := startContainer(ctx, postgresRequest(), pgPort)
	if err != nil {
		return environment{}, errs.Wrap(err, "start postgres")
	}
	rd, err := startContainer(ctx, redisRequest(), redisPort)
	if err != nil {
		terminate(pg.container)
		return environment{}, errs.Wrap(err, "start redis")
	}

	return environment{postgres: pg.endpoint, redis: rd.endpoint}, nil
}

func postgresRequest() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        "postgres:17",
		ExposedPorts: []string{string(pgPort)},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       "postgres",
		},
		Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
		// durability off, connections up for the concurrency suite
		Cmd: []string{
			"postgres",
			"-c", "fsync=off",
			"-c", "synchronous_commit=off",
			"-c", "full_page_writes=off",
			"-c", "max_connections=300",
		},
		WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
			return adminDSN(endpoint{host: host, port: port})
		}).WithStartupTimeout(time.Minute),
		Labels: map[string]string{"app": "commerce-core", "purpose": "e2e"},
	}
}

func redisRequest() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{string(redisPort)},
		Cmd:          []string{"redis-server", "--save", "", "--appendonly", "no"},
		WaitingFor:   wait.ForListeningPort(redisPort).WithStartupTimeout(30 * time.Second),
		Labels:       map[string]string{"app": "commerce-core", "purpose": "e2e"},
	}
}

type runningContainer struct {
	container testcontainers.Container
	endpoint  endpoint
}

func startContainer(ctx context.Context, req testcontainers.ContainerRequest, port nat.Port) (runningContainer, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return runningContainer{}, err
	}

	host, err := c.Host(ctx)
	if err != nil {
		terminate(c)
		return runningContainer{}, errs.Wrap(err, "container host")
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		terminate(c)
		return runningContainer{}, errs.Wrapf(err, "mapped port %s", port)
	}
	return runningContainer{container: c, endpoint: endpoint{host: host, port: mapped}}, nil
}

func terminate(c testcontainers.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = c.Terminate(ctx)
}

func adminDSN(pg endpoint) string {
	return fmt.Sprintf("postgres://%s:%s@%s/postgres?sslmode=disable", pgUser, pgPassword, pg.addr())
}
