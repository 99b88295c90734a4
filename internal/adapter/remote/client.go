package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"golang.org/x/time/rate"

	"tacticore/internal/app/ports"
	"tacticore/internal/domain/decision"
)

const (
	PredictPath = "/api/v1/ml/predict"
	QueryPath   = "/api/v1/llm/query"
	HealthPath  = "/api/v1/health"

	defaultCallTimeout   = 5 * time.Second
	defaultHealthTimeout = 2 * time.Second
)

type Config struct {
	Name          string
	BaseURL       string
	Path          string
	DialTimeout   time.Duration
	HealthTimeout time.Duration
	// Limiter is shared by every collaborator; nil means no budget.
	Limiter *rate.Limiter
}

// Client talks JSON over HTTP to a remote decision collaborator.
type Client struct {
	name          string
	baseURL       string
	path          string
	healthTimeout time.Duration
	limiter       *rate.Limiter
	http          *client.Client
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ports.ErrNotConfigured)
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = time.Second
	}
	hc, err := client.NewClient(client.WithDialTimeout(dial))
	if err != nil {
		return nil, fmt.Errorf("build %s client: %w", cfg.Name, err)
	}
	health := cfg.HealthTimeout
	if health <= 0 {
		health = defaultHealthTimeout
	}
	return &Client{
		name:          cfg.Name,
		baseURL:       base,
		path:          cfg.Path,
		healthTimeout: health,
		limiter:       cfg.Limiter,
		http:          hc,
	}, nil
}

func (c *Client) Name() string { return c.name }

type queryBody struct {
	Prompt    string            `json:"prompt"`
	Context   map[string]string `json:"context"`
	GameState decision.Snapshot `json:"game_state"`
	RequestID string            `json:"request_id,omitempty"`
}

type replyBody struct {
	Action *json.RawMessage `json:"action"`
}

func (c *Client) Query(ctx context.Context, q ports.RemoteQuery) (decision.Action, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return decision.Action{}, fmt.Errorf("%s: %w", c.name, ports.ErrRateLimited)
	}
	body, err := json.Marshal(queryBody{
		Prompt:    q.Prompt,
		Context:   q.Context,
		GameState: q.Snapshot,
		RequestID: q.RequestID,
	})
	if err != nil {
		return decision.Action{}, fmt.Errorf("encode %s query: %w", c.name, err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.baseURL + c.path)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if q.RequestID != "" {
		req.Header.Set("X-Request-ID", q.RequestID)
	}
	req.SetBody(body)

	if err := c.http.DoTimeout(ctx, req, resp, callTimeout(ctx)); err != nil {
		return decision.Action{}, fmt.Errorf("%s: %w: %v", c.name, ports.ErrUnavailable, err)
	}
	if code := resp.StatusCode(); code != consts.StatusOK {
		return decision.Action{}, fmt.Errorf("%s: %w: status %d", c.name, ports.ErrUnavailable, code)
	}
	return parseReply(resp.Body())
}

func parseReply(raw []byte) (decision.Action, error) {
	var reply replyBody
	if err := json.Unmarshal(raw, &reply); err != nil {
		return decision.Action{}, fmt.Errorf("%w: %v", ports.ErrInvalidReply, err)
	}
	if reply.Action == nil {
		return decision.Action{}, fmt.Errorf("%w: missing action", ports.ErrInvalidReply)
	}
	var a decision.Action
	if err := json.Unmarshal(*reply.Action, &a); err != nil {
		return decision.Action{}, fmt.Errorf("%w: %v", ports.ErrInvalidReply, err)
	}
	return a, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.baseURL + HealthPath)
	if err := c.http.DoTimeout(ctx, req, resp, callTimeout(ctx)); err != nil {
		return fmt.Errorf("%s: %w: %v", c.name, ports.ErrUnavailable, err)
	}
	if code := resp.StatusCode(); code != consts.StatusOK {
		return fmt.Errorf("%s: %w: status %d", c.name, ports.ErrUnavailable, code)
	}
	return nil
}

func callTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultCallTimeout
	}
	if left := time.Until(deadline); left > 0 {
		return left
	}
	return time.Millisecond
}
