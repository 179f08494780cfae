package uaproxy

import (
	"fmt"
	"io"
	"log/slog"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/smnsjas/go-uaproxy/catalog"
	"github.com/smnsjas/go-uaproxy/internal/logx"
	"github.com/smnsjas/go-uaproxy/metrics"
	"github.com/smnsjas/go-uaproxy/node"
	"github.com/smnsjas/go-uaproxy/session"
	"github.com/smnsjas/go-uaproxy/ua"
	"github.com/zhangyunhao116/skipmap"
)

// Client hands out proxies for the nodes of one session.
// Proxies for the same node id are shared, so their caches are too.
type Client struct {
	session session.Session
	env     *node.Env
	nodes   *skipmap.FuncMap[ua.NodeID, *node.Proxy]

	envOpts []node.Option
}

// Option configures a Client.
type Option func(*Client)

// WithLogger enables debug logging through a Printf-style logger.
func WithLogger(l logx.Logger) Option {
	return func(c *Client) { c.envOpts = append(c.envOpts, node.WithLogger(l)) }
}

// WithSlogLogger enables debug logging through slog.
func WithSlogLogger(l *slog.Logger) Option {
	return func(c *Client) { c.envOpts = append(c.envOpts, node.WithSlogLogger(l)) }
}

// WithMetrics records resolution and attribute metrics in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.envOpts = append(c.envOpts, node.WithMetrics(m)) }
}

// WithTracer opens spans with t instead of the global tracer.
func WithTracer(t opentracing.Tracer) Option {
	return func(c *Client) { c.envOpts = append(c.envOpts, node.WithTracer(t)) }
}

// WithCatalog sets the descriptor catalog. The default is catalog.Standard().
func WithCatalog(cat *catalog.Catalog) Option {
	return func(c *Client) { c.envOpts = append(c.envOpts, node.WithCatalog(cat)) }
}

// NewClient creates a client over s. The session is used as is; the client
// neither opens nor authenticates it.
func NewClient(s session.Session, opts ...Option) *Client {
	c := &Client{
		session: s,
		nodes:   skipmap.NewFunc[ua.NodeID, *node.Proxy](lessNodeID),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.env = node.NewEnv(s, c.envOpts...)
	return c
}

func lessNodeID(a, b ua.NodeID) bool { return ua.CompareNodeID(a, b) < 0 }

// Env returns the environment shared by the client's proxies.
func (c *Client) Env() *node.Env { return c.env }

// Catalog returns the descriptor catalog.
func (c *Client) Catalog() *catalog.Catalog { return c.env.Catalog() }

// Node returns the proxy for id, creating it on first use.
func (c *Client) Node(id ua.NodeID) *node.Proxy {
	p, _ := c.nodes.LoadOrStoreLazy(id, func() *node.Proxy {
		return node.New(c.env, id)
	})
	return p
}

// ObjectsFolder returns the proxy of the Objects folder.
func (c *Client) ObjectsFolder() *node.Proxy { return c.Node(ua.ObjectsFolder) }

// Server returns the proxy of the Server object.
func (c *Client) Server() *node.Proxy { return c.Node(ua.Server) }

// Typed returns the proxy for id viewed through the catalog table named
// table.
func (c *Client) Typed(id ua.NodeID, table string) (node.Typed, error) {
	t, ok := c.env.Catalog().Table(table)
	if !ok {
		return node.Typed{}, ua.WrapStatus(ua.StatusBadNotFound,
			fmt.Errorf("%w: %s", catalog.ErrUnknownTable, table))
	}
	return node.As(c.Node(id), t), nil
}

// Len returns the number of root proxies created so far.
func (c *Client) Len() int { return c.nodes.Len() }

// Close closes the session if it implements io.Closer.
func (c *Client) Close() error {
	if closer, ok := c.session.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
