package livy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/fjord-labs/materialize/lib/jitter"
)

const sessionBufferSeconds = 30

func shouldCreateNewSession(resp GetSessionResponse, statusCode int, err error) (bool, error) {
	if statusCode == http.StatusNotFound {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	// If the session is in a terminal state, then we should create a new one.
	return slices.Contains(TerminalSessionStates, resp.State), nil
}

func (c *Client) ensureSession(ctx context.Context, forceCheck bool) error {
	if c.sessionID == 0 {
		c.lastChecked = time.Now()
		return c.newSession(ctx)
	}

	if forceCheck || time.Since(c.lastChecked).Seconds() > (float64(c.sessionHeartbeatTimeoutInSecond)-sessionBufferSeconds) {
		c.lastChecked = time.Now()
		createNew, err := shouldCreateNewSession(c.getSession(ctx))
		if err != nil {
			return err
		}

		if createNew {
			return c.newSession(ctx)
		}
	}

	return nil
}

func (c *Client) getSession(ctx context.Context) (GetSessionResponse, int, error) {
	out, err := c.doRequest(ctx, "GET", fmt.Sprintf("/sessions/%d", c.sessionID), nil)
	if err != nil {
		return GetSessionResponse{}, out.httpStatus, err
	}

	var resp GetSessionResponse
	if err := json.Unmarshal(out.body, &resp); err != nil {
		return GetSessionResponse{}, out.httpStatus, err
	}

	return resp, out.httpStatus, nil
}

func (c *Client) newSession(ctx context.Context) error {
	reqBody, err := json.Marshal(CreateSessionRequest{
		Kind:                     SessionKindSql,
		Name:                     c.sessionName,
		Jars:                     c.sessionJars,
		Conf:                     c.sessionConf,
		DriverMemory:             c.sessionDriverMemory,
		ExecutorMemory:           c.sessionExecutorMemory,
		HeartbeatTimeoutInSecond: c.sessionHeartbeatTimeoutInSecond,
	})
	if err != nil {
		return err
	}

	out, err := c.doRequest(ctx, "POST", "/sessions", reqBody)
	if err != nil {
		return err
	}

	var resp CreateSessionResponse
	if err := json.Unmarshal(out.body, &resp); err != nil {
		return err
	}

	c.sessionID = resp.ID
	slog.Info("Created a new Livy session", slog.Int("sessionID", c.sessionID), slog.String("sessionName", c.sessionName))

	// Wait for the session to become idle before submitting statements.
	var count int
	for {
		session, _, err := c.getSession(ctx)
		if err != nil {
			return err
		}

		if session.State.IsReady() {
			return nil
		}

		if slices.Contains(TerminalSessionStates, session.State) {
			return fmt.Errorf("session: %d entered terminal state: %q while starting", c.sessionID, session.State)
		}

		sleepTime := jitter.Jitter(sleepBaseMs, sleepMaxMs, count)
		slog.Debug("Session is not ready yet, polling...", slog.Int("sessionID", c.sessionID), slog.String("state", string(session.State)), slog.Duration("sleepTime", sleepTime))
		time.Sleep(sleepTime)
		count++
	}
}
