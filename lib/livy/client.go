package livy

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fjord-labs/materialize/lib/jitter"
	"github.com/fjord-labs/materialize/lib/retry"
	sqllib "github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/telemetry/metrics/base"
)

const (
	sleepBaseMs                     = 1_000
	sleepMaxMs                      = 3_000
	defaultHeartbeatTimeoutInSecond = 300
	maxStatementRetries             = 5
)

type Client struct {
	mu                              sync.Mutex
	url                             string
	sessionID                       int
	httpClient                      *http.Client
	sessionConf                     map[string]any
	sessionJars                     []string
	sessionHeartbeatTimeoutInSecond int
	sessionDriverMemory             string
	sessionExecutorMemory           string
	sessionName                     string
	metricsClient                   base.Client

	lastChecked time.Time
}

func NewClient(url string, conf map[string]any, jars []string, heartbeatTimeoutInSecond int, driverMemory, executorMemory, sessionName string) *Client {
	return &Client{
		url:                             url,
		httpClient:                      &http.Client{},
		sessionConf:                     conf,
		sessionJars:                     jars,
		sessionHeartbeatTimeoutInSecond: cmp.Or(heartbeatTimeoutInSecond, defaultHeartbeatTimeoutInSecond),
		sessionDriverMemory:             driverMemory,
		sessionExecutorMemory:           executorMemory,
		sessionName:                     sessionName,
	}
}

func (c *Client) SetMetricsClient(metricsClient base.Client) {
	c.metricsClient = metricsClient
}

func (c *Client) buildRetryConfig() (retry.RetryConfig, error) {
	cfg, err := retry.NewJitterRetryConfig(sleepBaseMs, sleepMaxMs, maxStatementRetries, shouldRetry)
	if err != nil {
		return retry.RetryConfig{}, fmt.Errorf("failed to create retry config: %w", err)
	}

	return cfg, nil
}

func (c *Client) ExecContext(ctx context.Context, query string) error {
	retryCfg, err := c.buildRetryConfig()
	if err != nil {
		return err
	}

	return retry.WithRetries(retryCfg, func(attempt int, _ error) error {
		_, err := c.runStatement(ctx, query, attempt > 0)
		return err
	})
}

func (c *Client) QueryContext(ctx context.Context, query string) ([]sqllib.Row, error) {
	retryCfg, err := c.buildRetryConfig()
	if err != nil {
		return nil, err
	}

	resp, err := retry.WithRetriesAndResult(retryCfg, func(attempt int, _ error) (GetStatementResponse, error) {
		return c.runStatement(ctx, query, attempt > 0)
	})
	if err != nil {
		return nil, err
	}

	return resp.Rows()
}

func (c *Client) runStatement(ctx context.Context, query string, forceSessionCheck bool) (GetStatementResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureSession(ctx, forceSessionCheck); err != nil {
		return GetStatementResponse{}, err
	}

	statementID, err := c.submitStatement(ctx, query)
	if err != nil {
		return GetStatementResponse{}, err
	}

	return c.waitForStatement(ctx, statementID)
}

func (c *Client) waitForStatement(ctx context.Context, statementID int) (GetStatementResponse, error) {
	var count int
	var executing bool
	var executingStartTime time.Time
	startTime := time.Now()

	for {
		out, err := c.doRequest(ctx, "GET", fmt.Sprintf("/sessions/%d/statements/%d", c.sessionID, statementID), nil)
		if err != nil {
			return GetStatementResponse{}, err
		}

		var resp GetStatementResponse
		if err := json.Unmarshal(out.body, &resp); err != nil {
			return GetStatementResponse{}, err
		}

		if resp.Completed > 0 {
			if err := resp.Error(c.sessionID); err != nil {
				return GetStatementResponse{}, err
			}

			if c.metricsClient != nil {
				tags := map[string]string{"sessionName": c.sessionName}
				if !executingStartTime.IsZero() {
					c.metricsClient.Gauge("livy.statement.execution_ms", float64(time.Since(executingStartTime).Milliseconds()), tags)
				}
				c.metricsClient.Gauge("livy.statement.total_ms", float64(time.Since(startTime).Milliseconds()), tags)
			}

			return resp, nil
		}

		if resp.State == "running" && !executing {
			executing = true
			executingStartTime = time.Now()
			if c.metricsClient != nil {
				c.metricsClient.Gauge("livy.statement.queued_ms", float64(time.Since(startTime).Milliseconds()), map[string]string{"sessionName": c.sessionName})
			}
		}

		sleepTime := jitter.Jitter(sleepBaseMs, sleepMaxMs, count)
		slog.Debug("Statement is not done yet, polling...",
			slog.Int("sessionID", c.sessionID),
			slog.Int("statementID", statementID),
			slog.String("state", resp.State),
			slog.Duration("sleepTime", sleepTime),
		)

		time.Sleep(sleepTime)
		count++
	}
}

func (c *Client) submitStatement(ctx context.Context, code string) (int, error) {
	reqBody, err := json.Marshal(CreateStatementRequest{Code: code, Kind: SessionKindSql})
	if err != nil {
		return 0, err
	}

	out, err := c.doRequest(ctx, "POST", fmt.Sprintf("/sessions/%d/statements", c.sessionID), reqBody)
	if err != nil {
		return 0, err
	}

	var resp CreateStatementResponse
	if err := json.Unmarshal(out.body, &resp); err != nil {
		return 0, err
	}

	return resp.ID, nil
}

type doRequestResponse struct {
	body       []byte
	httpStatus int
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) (doRequestResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, bytes.NewBuffer(body))
	if err != nil {
		return doRequestResponse{}, err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return doRequestResponse{}, err
	}

	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return doRequestResponse{}, err
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return doRequestResponse{body: out, httpStatus: resp.StatusCode}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return doRequestResponse{body: out, httpStatus: resp.StatusCode}, nil
}
