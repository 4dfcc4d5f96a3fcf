package storefront

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/whatupfoo/h2-dev-plus/internal/config"
)

const (
	publicTokenHeader  = "X-Shopify-Storefront-Access-Token"
	privateTokenHeader = "Shopify-Storefront-Private-Token"
)

// Client habla con la Storefront API de Shopify.
type Client struct {
	gql      *graphql.Client
	endpoint string
	tokens   oauth2.TokenSource
	header   string
}

type Option func(*clientOptions)

type clientOptions struct {
	endpoint   string
	tokenURL   string
	httpClient *http.Client
}

// WithEndpoint reemplaza la URL del endpoint GraphQL (tests, proxies).
func WithEndpoint(u string) Option {
	return func(o *clientOptions) { o.endpoint = u }
}

// WithTokenURL reemplaza el endpoint OAuth2 de client credentials.
func WithTokenURL(u string) Option {
	return func(o *clientOptions) { o.tokenURL = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

func NewClient(cfg config.StorefrontConfig, opts ...Option) *Client {
	o := clientOptions{
		endpoint:   fmt.Sprintf("https://%s/api/%s/graphql.json", cfg.StoreDomain, cfg.APIVersion),
		tokenURL:   fmt.Sprintf("https://%s/admin/oauth/access_token", cfg.StoreDomain),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		gql:      graphql.NewClient(o.endpoint, graphql.WithHTTPClient(o.httpClient)),
		endpoint: o.endpoint,
	}
	c.gql.Log = func(s string) { log.Debug().Str("component", "storefront").Msg(s) }

	if cfg.PublicToken != "" {
		c.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.PublicToken})
		c.header = publicTokenHeader
		return c
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     o.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.httpClient)
	c.tokens = oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx))
	c.header = privateTokenHeader
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// run ejecuta la operación y decodifica data en out.
func (c *Client) run(ctx context.Context, op, query string, vars map[string]any, out any) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return errors.Wrap(err, "storefront: token")
	}
	req.Header.Set(c.header, tok.AccessToken)

	start := time.Now()
	if err := c.gql.Run(ctx, req, out); err != nil {
		log.Warn().Err(err).Str("op", op).Dur("took", time.Since(start)).Msg("storefront request failed")
		return errors.Wrapf(err, "storefront: %s", op)
	}
	log.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("storefront request")
	return nil
}
