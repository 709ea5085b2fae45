package repository

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name       string
	driver     string
	dollarArgs bool   // $1, $2 instead of ?
	forUpdate  string // row lock suffix for read-modify-write
	ignoreDup  bool   // INSERT IGNORE instead of ON CONFLICT DO NOTHING
	schema     []string
}

var sqliteDialect = dialect{
	name:      "sqlite",
	driver:    "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS players (
			nombre_usuario TEXT NOT NULL PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS mutation_logs (
			id TEXT NOT NULL PRIMARY KEY,
			operation TEXT NOT NULL,
			player TEXT NOT NULL,
			counterparty TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			item_name TEXT NOT NULL DEFAULT '',
			statements TEXT NOT NULL,
			modified INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mutation_logs_created ON mutation_logs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_mutation_logs_player ON mutation_logs(player)`,
		`CREATE INDEX IF NOT EXISTS idx_mutation_logs_counterparty ON mutation_logs(counterparty)`,
	},
}

var postgresDialect = dialect{
	name:       "postgres",
	driver:     "postgres",
	dollarArgs: true,
	forUpdate:  " FOR UPDATE",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS players (
			nombre_usuario TEXT NOT NULL PRIMARY KEY,
			document JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS mutation_logs (
			id TEXT NOT NULL PRIMARY KEY,
			operation TEXT NOT NULL,
			player TEXT NOT NULL,
			counterparty TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			item_name TEXT NOT NULL DEFAULT '',
			statements JSONB NOT NULL,
			modified INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mutation_logs_created ON mutation_logs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_mutation_logs_player ON mutation_logs(player)`,
		`CREATE INDEX IF NOT EXISTS idx_mutation_logs_counterparty ON mutation_logs(counterparty)`,
	},
}

var mysqlDialect = dialect{
	name:      "mysql",
	driver:    "mysql",
	forUpdate: " FOR UPDATE",
	ignoreDup: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS players (
			nombre_usuario VARCHAR(191) NOT NULL PRIMARY KEY,
			document JSON NOT NULL,
			updated_at DATETIME(6) NOT NULL
		) DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS mutation_logs (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			operation VARCHAR(32) NOT NULL,
			player VARCHAR(191) NOT NULL,
			counterparty VARCHAR(191) NOT NULL DEFAULT '',
			kind VARCHAR(32) NOT NULL DEFAULT '',
			item_name VARCHAR(191) NOT NULL DEFAULT '',
			statements JSON NOT NULL,
			modified INT NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL,
			request_id VARCHAR(64) NOT NULL DEFAULT '',
			created_at DATETIME(6) NOT NULL,
			INDEX idx_mutation_logs_created (created_at),
			INDEX idx_mutation_logs_player (player),
			INDEX idx_mutation_logs_counterparty (counterparty)
		) DEFAULT CHARSET=utf8mb4`,
	},
}

// insertNew builds an insert that silently skips rows whose primary key exists.
func (d dialect) insertNew(table, columns string, n int) string {
	values := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	if d.ignoreDup {
		return d.rebind("INSERT IGNORE INTO " + table + " (" + columns + ") VALUES (" + values + ")")
	}
	return d.rebind("INSERT INTO " + table + " (" + columns + ") VALUES (" + values + ") ON CONFLICT DO NOTHING")
}

// rebind rewrites ? placeholders for dialects that number their arguments.
func (d dialect) rebind(query string) string {
	if !d.dollarArgs {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MySQLDSN builds a go-sql-driver DSN that parses DATETIME columns into time.Time.
func MySQLDSN(host string, port int, user, password, database string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + strconv.Itoa(port)
	cfg.DBName = database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// PostgresDSN builds a lib/pq URL DSN.
func PostgresDSN(host string, port int, user, password, database, sslMode string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + strconv.Itoa(port),
		Path:     "/" + database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}
