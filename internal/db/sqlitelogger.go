package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// loggingConnector opens sqlite3 connections that report every statement to
// the logger at debug level.
type loggingConnector struct {
	dsn    string
	driver *sqlite3.SQLiteDriver
	logger *slog.Logger
}

// NewLoggingConnector returns a connector for sql.OpenDB. Each statement is
// logged with its verb and table (for example "insert" / "conversions"), its
// arguments, how long it took and any error. A nil logger means slog.Default().
func NewLoggingConnector(dsn string, logger *slog.Logger) (driver.Connector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingConnector{dsn: dsn, driver: &sqlite3.SQLiteDriver{}, logger: logger}, nil
}

func (c *loggingConnector) Driver() driver.Driver {
	return c.driver
}

func (c *loggingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	sc, ok := conn.(*sqlite3.SQLiteConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite logger: unexpected connection type %T", conn)
	}
	return &loggingConn{conn: sc, logger: c.logger}, nil
}

// loggingConn forwards to the sqlite3 connection. database/sql sends plain
// Exec and Query calls through ExecContext and QueryContext, so those are the
// logged paths; explicitly prepared statements are logged once when prepared.
type loggingConn struct {
	conn   *sqlite3.SQLiteConn
	logger *slog.Logger
}

var (
	_ driver.ExecerContext      = (*loggingConn)(nil)
	_ driver.QueryerContext     = (*loggingConn)(nil)
	_ driver.ConnPrepareContext = (*loggingConn)(nil)
	_ driver.ConnBeginTx        = (*loggingConn)(nil)
	_ driver.Pinger             = (*loggingConn)(nil)
)

func (c *loggingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	res, err := c.conn.ExecContext(ctx, query, args)
	c.log(ctx, "exec", query, args, start, err)
	return res, err
}

func (c *loggingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	rows, err := c.conn.QueryContext(ctx, query, args)
	c.log(ctx, "query", query, args, start, err)
	return rows, err
}

func (c *loggingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	start := time.Now()
	stmt, err := c.conn.PrepareContext(ctx, query)
	c.log(ctx, "prepare", query, nil, start, err)
	return stmt, err
}

func (c *loggingConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *loggingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return c.conn.BeginTx(ctx, opts)
}

func (c *loggingConn) Begin() (driver.Tx, error) {
	return c.conn.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *loggingConn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *loggingConn) Close() error {
	return c.conn.Close()
}

func (c *loggingConn) log(ctx context.Context, op, query string, args []driver.NamedValue, start time.Time, err error) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	verb, table := describeStatement(query)
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("verb", verb),
		slog.String("table", table),
		slog.String("sql", query),
		slog.Any("args", formatArgs(args)),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "sql", attrs...)
}

// describeStatement returns the lower-cased leading keyword of query and the
// table it targets, if one can be found. Leading "--" comment lines are
// skipped so the embedded query files are tagged by their first statement.
func describeStatement(query string) (verb, table string) {
	var words []string
	for _, line := range strings.Split(query, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	if len(words) == 0 {
		return "", ""
	}
	verb = strings.ToLower(words[0])

	if verb == "create" {
		// CREATE [UNIQUE] TABLE|INDEX [IF NOT EXISTS] name
		for i, w := range words {
			lw := strings.ToLower(w)
			if lw != "table" && lw != "index" {
				continue
			}
			rest := words[i+1:]
			for len(rest) > 0 && isExistenceClause(rest[0]) {
				rest = rest[1:]
			}
			if len(rest) > 0 {
				table = tableName(rest[0])
			}
			return verb, table
		}
		return verb, ""
	}

	marker := map[string]string{
		"insert": "into",
		"select": "from",
		"delete": "from",
		"update": "update",
	}[verb]
	if marker == "" {
		return verb, ""
	}
	for i, w := range words[:len(words)-1] {
		if strings.ToLower(w) == marker {
			return verb, tableName(words[i+1])
		}
	}
	return verb, ""
}

func isExistenceClause(word string) bool {
	switch strings.ToLower(word) {
	case "if", "not", "exists":
		return true
	}
	return false
}

func tableName(word string) string {
	word, _, _ = strings.Cut(word, "(")
	return strings.Trim(word, ";,`\"[]")
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		v := "NULL"
		switch t := a.Value.(type) {
		case nil:
		case []byte:
			v = string(t)
		default:
			v = fmt.Sprint(t)
		}
		if a.Name != "" {
			v = a.Name + "=" + v
		}
		out[i] = v
	}
	return out
}
