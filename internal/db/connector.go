package db

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// applicationName is reported to the server in pg_stat_activity.
const applicationName = "pgnc-upload"

// Connector opens a database session on the loopback end of a tunnel.
type Connector interface {
	Connect(ctx context.Context, params pgnc.DBParams, localPort int) (Conn, error)
}

// StandardConnector connects with username/password authentication.
// There is no retry: a failed connect is reported to the operator as is.
type StandardConnector struct {
	logger pgnc.Logger
}

var _ Connector = (*StandardConnector)(nil)

// NewStandardConnector creates a StandardConnector.
func NewStandardConnector(logger pgnc.Logger) *StandardConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{logger: logger}
}

// Connect opens one pgx connection to 127.0.0.1:localPort and pings it.
func (c *StandardConnector) Connect(ctx context.Context, params pgnc.DBParams, localPort int) (Conn, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(params, localPort))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", pgnc.ErrInvalidConfig, err)
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		c.logger.Verbose("Server notice: %s", notice.Message)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, pgnc.LocalBindHost, localPort, params.Name)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(context.Background())
		return nil, wrapConnectionError(err, pgnc.LocalBindHost, localPort, params.Name)
	}

	c.logger.Verbose("Connected to database %q through local port %d", params.Name, localPort)
	return NewConnAdapter(conn), nil
}

// BuildConnectionString renders params as a postgresql:// URL aimed at the
// loopback end of the tunnel.
func BuildConnectionString(params pgnc.DBParams, localPort int) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   pgnc.LocalBindHost + ":" + strconv.Itoa(localPort),
		Path:   "/" + params.Name,
	}

	if params.User != "" {
		if params.Password != "" {
			u.User = url.UserPassword(params.User, params.Password)
		} else {
			u.User = url.User(params.User)
		}
	}

	query := url.Values{}
	sslMode := params.SSLMode
	if sslMode == "" {
		sslMode = pgnc.DefaultSSLMode
	}
	query.Set("sslmode", sslMode)
	query.Set("application_name", applicationName)
	if params.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(params.ConnectTimeout.Seconds())))
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// host and port are the loopback end of the tunnel, so refusals and timeouts
// usually point at the tunnel or at the database endpoint behind the bastion.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - The tunnel was closed before the database connection was made
  - RDS_HOST or RDS_PORT does not point at a running PostgreSQL server

Original error: %w`, addr, asConnectionFailure(err))

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong DB_PASS
  - Wrong DB_USER
  - User does not have access to the database

Original error: %w`, database, asConnectionFailure(err))

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

Possible causes:
  - DB_NAME is misspelled
  - RDS_HOST points at a different server

Original error: %w`, database, asConnectionFailure(err))

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - The bastion cannot reach RDS_HOST (security group or network ACL)
  - Server is overloaded or unresponsive

Original error: %w`, addr, asConnectionFailure(err))

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but DB_SSLMODE is "disable"
  - Certificate verification failed (verify-* modes check the tunnel address, try DB_SSLMODE=require)

Original error: %w`, asConnectionFailure(err))

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached on the server
  - Stale sessions from interrupted uploads

Original error: %w`, database, asConnectionFailure(err))

	default:
		return fmt.Errorf("failed to connect to database: %w", asConnectionFailure(err))
	}
}

// asConnectionFailure ties err to pgnc.ErrConnectionFailed so callers can classify it.
func asConnectionFailure(err error) error {
	return &connectionError{err: err}
}

type connectionError struct {
	err error
}

func (e *connectionError) Error() string { return e.err.Error() }

func (e *connectionError) Unwrap() []error { return []error{e.err, pgnc.ErrConnectionFailed} }
