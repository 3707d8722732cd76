package database

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/bridge-api/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

func testDatabaseConfig() config.DatabaseConfig {
	cfg := config.DefaultConfig().Database
	cfg.Host = "db.internal"
	cfg.User = "bridges"
	cfg.Password = "p@ss:w/rd"
	cfg.Name = "b2p"
	return cfg
}

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := DSN(testDatabaseConfig())

	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("DSN does not parse: %v", err)
	}
	if pw, _ := u.User.Password(); pw != "p@ss:w/rd" {
		t.Fatalf("password not round-tripped: %q", pw)
	}
	if u.Host != "db.internal:5432" {
		t.Fatalf("unexpected host %q", u.Host)
	}
	if u.Path != "/b2p" || u.Query().Get("sslmode") != "prefer" {
		t.Fatalf("unexpected DSN %s", dsn)
	}
}

func TestDSN_HonoursPortAndIPv6(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.Host = "::1"
	cfg.Port = 6543

	u, err := url.Parse(DSN(cfg))
	if err != nil {
		t.Fatalf("DSN does not parse: %v", err)
	}
	if u.Host != "[::1]:6543" {
		t.Fatalf("unexpected host %q", u.Host)
	}
}

func TestPoolConfig_AppliesSizing(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.MaxConns = 7
	cfg.MinConns = 2
	cfg.ConnMaxLifetime = 60
	cfg.ConnMaxIdleTime = 15

	pc, err := PoolConfig(cfg)
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}
	if pc.MaxConns != 7 || pc.MinConns != 2 {
		t.Fatalf("unexpected pool size %d/%d", pc.MinConns, pc.MaxConns)
	}
	if pc.MaxConnLifetime != time.Minute || pc.MaxConnIdleTime != 15*time.Second {
		t.Fatalf("unexpected lifetimes %s/%s", pc.MaxConnLifetime, pc.MaxConnIdleTime)
	}
	if pc.ConnConfig.Port != 5432 || pc.ConnConfig.Password != "p@ss:w/rd" {
		t.Fatalf("connection settings not parsed: port %d", pc.ConnConfig.Port)
	}
}

func TestTracedPoolConfig_LocalTraceOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database = testDatabaseConfig()
	cfg.Primary.Env = "local"

	logger := zerolog.New(io.Discard).Level(zerolog.DebugLevel)
	var buf bytes.Buffer

	pc, err := tracedPoolConfig(cfg, &logger, nil, options{traceOutput: &buf})
	if err != nil {
		t.Fatalf("tracedPoolConfig: %v", err)
	}

	tl, ok := pc.ConnConfig.Tracer.(*tracelog.TraceLog)
	if !ok {
		t.Fatalf("expected a tracelog tracer, got %T", pc.ConnConfig.Tracer)
	}
	tl.Logger.Log(context.Background(), tracelog.LogLevelInfo, "Query", map[string]any{"sql": "SELECT 1"})

	if !strings.Contains(buf.String(), "SELECT 1") {
		t.Fatalf("statement trace not written to the configured output: %q", buf.String())
	}
}

func TestTracedPoolConfig_NoTracingOutsideLocal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database = testDatabaseConfig()

	logger := zerolog.Nop()
	pc, err := tracedPoolConfig(cfg, &logger, nil, options{})
	if err != nil {
		t.Fatalf("tracedPoolConfig: %v", err)
	}
	if pc.ConnConfig.Tracer != nil {
		t.Fatalf("unexpected tracer %T", pc.ConnConfig.Tracer)
	}
}
