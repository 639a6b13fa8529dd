package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

const (
	CollectionProducts = "products"
	CollectionOrders   = "orders"
)

// UnavailableError reports that the store could not be reached at Addr.
type UnavailableError struct {
	Addr string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("Database connection failed. Please ensure MongoDB is running at %s", e.Addr)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == catalog.ErrUnavailable }

// Client holds the process-wide connection. It starts disconnected; every
// Collection call goes through EnsureConnected, so a store that was down at
// startup is picked up on the next request.
type Client struct {
	url     string
	dbName  string
	timeout time.Duration
	logger  *log.Entry

	mu sync.Mutex
	mc *mongo.Client
}

func NewClient(url, dbName string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:     url,
		dbName:  dbName,
		timeout: timeout,
		logger:  log.WithFields(log.Fields{"component": "mongo", "database": dbName}),
	}
}

func (c *Client) URL() string { return c.url }

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mc != nil
}

// EnsureConnected dials and pings the server unless a connection is already
// established. On failure the client stays disconnected.
func (c *Client) EnsureConnected(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mc != nil {
		return c.mc.Database(c.dbName), nil
	}

	opts := options.Client().
		ApplyURI(c.url).
		SetServerSelectionTimeout(c.timeout).
		SetConnectTimeout(c.timeout)
	mc, err := mongo.Connect(ctx, opts)
	if err != nil {
		c.logger.WithError(err).Error("connect failed")
		return nil, &UnavailableError{Addr: c.url, Err: err}
	}

	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := mc.Ping(pctx, readpref.Primary()); err != nil {
		_ = mc.Disconnect(context.Background())
		c.logger.WithError(err).Error("ping failed")
		return nil, &UnavailableError{Addr: c.url, Err: err}
	}

	c.mc = mc
	c.logger.Info("connected")
	return mc.Database(c.dbName), nil
}

func (c *Client) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := c.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Ping connects if needed and checks that the primary answers.
func (c *Client) Ping(ctx context.Context) error {
	db, err := c.EnsureConnected(ctx)
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := db.Client().Ping(pctx, readpref.Primary()); err != nil {
		return c.translate(err)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mc == nil {
		return nil
	}
	err := c.mc.Disconnect(ctx)
	c.mc = nil
	return err
}

// translate maps driver connectivity failures to UnavailableError and
// leaves every other error as is.
func (c *Client) translate(err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return &UnavailableError{Addr: c.url, Err: err}
	}
	return err
}

func isConnectivity(err error) bool {
	var sse topology.ServerSelectionError
	switch {
	case errors.As(err, &sse):
		return true
	case errors.Is(err, mongo.ErrClientDisconnected):
		return true
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return true
	}
	return false
}
