package socketmode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"netops_helper/internal/logger"
)

// Opener trades the bearer token for a one-time socket URL
type Opener interface {
	Open(ctx context.Context) (*url.URL, error)
}

// Handshaker calls apps.connections.open. It never retries.
type Handshaker struct {
	api *slack.Client
}

const connectionsOpenMethod = "apps.connections.open"

// doer is the HTTP client interface slack-go accepts through OptionHTTPClient
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// formDoer sends apps.connections.open as an empty form POST. slack-go posts it as JSON.
type formDoer struct {
	next doer
}

func (d formDoer) Do(req *http.Request) (*http.Response, error) {
	if strings.HasSuffix(req.URL.Path, "/"+connectionsOpenMethod) {
		req = req.Clone(req.Context())
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		req.ContentLength = 0
	}
	return d.next.Do(req)
}

// NewHandshaker creates a Handshaker. apiURL must end with a slash, e.g. https://slack.com/api/.
func NewHandshaker(token string, apiURL string, httpClient *http.Client) (*Handshaker, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	options := []slack.Option{
		slack.OptionAppLevelToken(token),
		slack.OptionHTTPClient(formDoer{next: httpClient}),
	}
	if apiURL != "" {
		options = append(options, slack.OptionAPIURL(apiURL))
	}
	return &Handshaker{api: slack.New(token, options...)}, nil
}

// Open performs the handshake and returns the parsed socket URL
func (h *Handshaker) Open(ctx context.Context) (*url.URL, error) {
	_, rawURL, err := h.api.StartSocketModeContext(ctx)
	if err != nil {
		if reason, ok := rejection(err); ok {
			return nil, &HandshakeRejected{Reason: reason}
		}
		return nil, &TransportError{Op: connectionsOpenMethod, Err: err}
	}

	u, err := parseEndpoint(rawURL)
	if err != nil {
		return nil, err
	}
	logger.GetLogger().Info("socket mode handshake succeeded", zap.String("host", u.Host))
	return u, nil
}

func rejection(err error) (string, bool) {
	var value slack.SlackErrorResponse
	if errors.As(err, &value) {
		return value.Err, true
	}
	var ptr *slack.SlackErrorResponse
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Err, true
	}
	return "", false
}

func parseEndpoint(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, &MalformedEndpoint{URL: rawURL, Err: errors.New("empty url")}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &MalformedEndpoint{URL: rawURL, Err: err}
	}
	if u.Scheme != "wss" && u.Scheme != "ws" {
		return nil, &MalformedEndpoint{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &MalformedEndpoint{URL: rawURL, Err: errors.New("missing host")}
	}
	return u, nil
}
