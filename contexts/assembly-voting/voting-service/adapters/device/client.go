package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	domainerrors "quorum/contexts/assembly-voting/voting-service/domain/errors"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

const defaultUnaryTimeout = 10 * time.Second

// Client talks to the polling hardware controller over its JSON HTTP
// protocol. Every call is a single round trip with a bounded timeout and
// no internal retries.
type Client struct {
	baseURL      string
	client       *http.Client
	unaryTimeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultUnaryTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{},
		unaryTimeout: timeout,
	}
}

func NewWithClient(baseURL string, client *http.Client, timeout time.Duration) *Client {
	if client == nil {
		client = &http.Client{}
	}
	c := New(baseURL, timeout)
	c.client = client
	return c
}

type okResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type deviceResponse struct {
	Connected bool   `json:"connected"`
	Device    string `json:"device"`
	Error     string `json:"error"`
}

func (c *Client) CheckDevice(ctx context.Context) (entities.DeviceStatus, error) {
	body, err := c.request(ctx, http.MethodGet, "/device", nil, nil)
	if err != nil {
		return entities.DeviceStatus{}, err
	}
	var resp deviceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.DeviceStatus{}, &domainerrors.DeviceError{
			Failure: domainerrors.DeviceRejected,
			Message: fmt.Sprintf("decode device response: %v", err),
		}
	}
	if resp.Error != "" {
		return entities.DeviceStatus{}, &domainerrors.DeviceError{
			Failure: domainerrors.DeviceRejected,
			Message: resp.Error,
		}
	}
	return entities.DeviceStatus{Connected: resp.Connected, DeviceName: resp.Device}, nil
}

func (c *Client) StartSession(ctx context.Context, mode entities.SessionMode, params ports.DeviceStartParams) error {
	var path string
	payload := map[string]any{}
	switch mode {
	case entities.ModeTest:
		path = "/start_ping"
	case entities.ModeSpeakerList:
		path = "/start_speaker_list"
		payload["item"] = params.Target
	case entities.ModeMotionPoll:
		path = "/start_yes_no_abstain"
		payload["poll"] = params.Target
	case entities.ModeAssignmentPoll:
		if params.Method == entities.MethodMultiCandidate {
			path = "/start_election"
			payload["poll"] = params.Target
			payload["max_selectable"] = params.MaxSelectable
		} else {
			path = "/start_election_one"
			payload["poll"] = params.Target
		}
	default:
		return &domainerrors.DeviceError{
			Failure: domainerrors.DeviceRejected,
			Message: fmt.Sprintf("unsupported session mode %q", mode),
		}
	}

	var body any
	if len(payload) > 0 {
		body = payload
	}
	return c.expectOK(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) StopSession(ctx context.Context) error {
	return c.expectOK(ctx, http.MethodPost, "/stop", nil, nil)
}

func (c *Client) PollResult(ctx context.Context, method entities.PollMethod, target string) (ports.DeviceRawResult, error) {
	query := url.Values{}
	query.Set("poll", strings.TrimSpace(target))

	switch method {
	case entities.MethodYesNoAbstain:
		body, err := c.request(ctx, http.MethodGet, "/result_yes_no_abstain", query, nil)
		if err != nil {
			return ports.DeviceRawResult{}, err
		}
		var resp struct {
			Votes []int  `json:"votes"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return ports.DeviceRawResult{}, &domainerrors.DeviceError{
				Failure: domainerrors.DeviceRejected,
				Message: fmt.Sprintf("decode result response: %v", err),
			}
		}
		if resp.Error != "" {
			return ports.DeviceRawResult{}, &domainerrors.DeviceError{
				Failure: domainerrors.DeviceRejected,
				Message: resp.Error,
			}
		}
		if len(resp.Votes) != 3 {
			return ports.DeviceRawResult{}, &domainerrors.DeviceError{
				Failure: domainerrors.DeviceRejected,
				Message: fmt.Sprintf("expected three vote counters, got %d", len(resp.Votes)),
			}
		}
		return ports.DeviceRawResult{Yes: resp.Votes[0], No: resp.Votes[1], Abstain: resp.Votes[2]}, nil

	case entities.MethodMultiCandidate:
		body, err := c.request(ctx, http.MethodGet, "/result_election", query, nil)
		if err != nil {
			return ports.DeviceRawResult{}, err
		}
		var resp struct {
			Votes map[string]int `json:"votes"`
			Error string         `json:"error"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return ports.DeviceRawResult{}, &domainerrors.DeviceError{
				Failure: domainerrors.DeviceRejected,
				Message: fmt.Sprintf("decode result response: %v", err),
			}
		}
		if resp.Error != "" {
			return ports.DeviceRawResult{}, &domainerrors.DeviceError{
				Failure: domainerrors.DeviceRejected,
				Message: resp.Error,
			}
		}
		return ports.DeviceRawResult{CandidateVotes: resp.Votes}, nil

	default:
		return ports.DeviceRawResult{}, &domainerrors.DeviceError{
			Failure: domainerrors.DeviceRejected,
			Message: fmt.Sprintf("unsupported poll method %q", method),
		}
	}
}

func (c *Client) expectOK(ctx context.Context, method, path string, query url.Values, body any) error {
	payload, err := c.request(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	var resp okResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return &domainerrors.DeviceError{
			Failure: domainerrors.DeviceRejected,
			Message: fmt.Sprintf("decode response: %v", err),
		}
	}
	if resp.Error != "" {
		return &domainerrors.DeviceError{Failure: domainerrors.DeviceRejected, Message: resp.Error}
	}
	if !resp.OK {
		return &domainerrors.DeviceError{Failure: domainerrors.DeviceRejected, Message: "request not acknowledged"}
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	reqCtx := ctx
	if c.unaryTimeout > 0 {
		if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > c.unaryTimeout {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.unaryTimeout)
			defer cancel()
		}
	}
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = buf
	}
	req, err := http.NewRequestWithContext(reqCtx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return nil, &domainerrors.DeviceError{
				Failure: domainerrors.DeviceTimeout,
				Message: "device did not answer in time",
			}
		}
		return nil, &domainerrors.DeviceError{
			Failure: domainerrors.DeviceUnreachable,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domainerrors.DeviceError{
			Failure: domainerrors.DeviceUnreachable,
			Message: err.Error(),
		}
	}
	if resp.StatusCode >= 400 {
		message := strings.TrimSpace(string(payload))
		var er okResponse
		if err := json.Unmarshal(payload, &er); err == nil && er.Error != "" {
			message = er.Error
		}
		if message == "" {
			message = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return nil, &domainerrors.DeviceError{
			Failure: domainerrors.DeviceRejected,
			Message: message,
		}
	}
	return payload, nil
}

var _ ports.DeviceLink = (*Client)(nil)
