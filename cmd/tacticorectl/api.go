package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

var errServer = errors.New("server rejected request")

type apiClient struct {
	base    string
	timeout time.Duration
	http    *client.Client
}

func newAPIClient(flags *globalFlags) (*apiClient, error) {
	base := strings.TrimRight(strings.TrimSpace(flags.addr), "/")
	if base == "" {
		return nil, errors.New("--addr is required")
	}
	hc, err := client.NewClient(client.WithDialTimeout(2 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	return &apiClient{base: base, timeout: flags.timeout, http: hc}, nil
}

// do sends one request and returns the raw body of a 2xx reply.
func (c *apiClient) do(ctx context.Context, method, path string, headers map[string]string, body []byte) ([]byte, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(method)
	req.SetRequestURI(c.base + path)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(body)
	}
	if err := c.http.DoTimeout(ctx, req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	out := append([]byte(nil), resp.Body()...)
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", errServer, method, path, code, serverMessage(out))
	}
	return out, nil
}

func (c *apiClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, consts.MethodGet, path, nil, nil)
}

func serverMessage(body []byte) string {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Code != "" {
		return env.Error.Code + ": " + env.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, werr := w.Write(raw)
		return werr
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
