package livy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SessionState - https://livy.incubator.apache.org/docs/latest/rest-api.html#:~:text=of%20key%3Dval-,Session%20State,-Value
type SessionState string

const (
	StateNotStarted   SessionState = "not_started"
	StateStarting     SessionState = "starting"
	StateIdle         SessionState = "idle"
	StateBusy         SessionState = "busy"
	StateShuttingDown SessionState = "shutting_down"
	StateDead         SessionState = "dead"
	StateKilled       SessionState = "killed"
	StateSuccess      SessionState = "success"
	StateError        SessionState = "error"
)

var TerminalSessionStates = []SessionState{StateShuttingDown, StateDead, StateKilled, StateSuccess, StateError}

func (s SessionState) IsReady() bool {
	return s == StateIdle
}

const SessionKindSql = "sql"

type GetSessionResponse struct {
	ID    int          `json:"id"`
	State SessionState `json:"state"`
	Kind  string       `json:"kind"`
}

type CreateSessionRequest struct {
	Kind                     string         `json:"kind"`
	Name                     string         `json:"name,omitempty"`
	Jars                     []string       `json:"jars,omitempty"`
	Conf                     map[string]any `json:"conf"`
	DriverMemory             string         `json:"driverMemory,omitempty"`
	ExecutorMemory           string         `json:"executorMemory,omitempty"`
	HeartbeatTimeoutInSecond int            `json:"heartbeatTimeoutInSecond,omitempty"`
}

type CreateSessionResponse struct {
	ID    int          `json:"id"`
	State SessionState `json:"state"`
}

type CreateStatementRequest struct {
	Code string `json:"code"`
	Kind string `json:"kind"`
}

type CreateStatementResponse struct {
	ID int `json:"id"`
}

type StatementOutput struct {
	Status    string         `json:"status"`
	Data      map[string]any `json:"data,omitempty"`
	EValue    string         `json:"evalue,omitempty"`
	TrackBack []string       `json:"traceback,omitempty"`
}

type GetStatementResponse struct {
	ID        int             `json:"id"`
	State     string          `json:"state"`
	Output    StatementOutput `json:"output"`
	Started   int             `json:"started"`
	Completed int             `json:"completed"`
}

func (g GetStatementResponse) Error(sessionID int) error {
	if g.Output.Status == "error" {
		return fmt.Errorf("statement: %d for session: %d failed: %s, stacktrace: %s", g.ID, sessionID, g.Output.EValue, strings.Join(g.Output.TrackBack, "\n"))
	}

	return nil
}

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type statementResult struct {
	Schema struct {
		Fields []Field `json:"fields"`
	} `json:"schema"`
	Data [][]any `json:"data"`
}

func (g GetStatementResponse) result() (statementResult, bool, error) {
	raw, isOk := g.Output.Data["application/json"]
	if !isOk {
		return statementResult{}, false, nil
	}

	bytes, err := json.Marshal(raw)
	if err != nil {
		return statementResult{}, false, err
	}

	var result statementResult
	if err = json.Unmarshal(bytes, &result); err != nil {
		return statementResult{}, false, err
	}

	return result, true, nil
}
