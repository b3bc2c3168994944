package socketmode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"netops_helper/internal/logger"
	"netops_helper/internal/metrics"
)

// Sender writes one text frame to the open socket
type Sender interface {
	Send(data []byte) error
}

// Responder delivers responses over the socket or to a callback URL
type Responder struct {
	sender     Sender
	httpClient *http.Client
}

// NewResponder creates a Responder. A nil httpClient uses http.DefaultClient.
func NewResponder(sender Sender, httpClient *http.Client) *Responder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Responder{sender: sender, httpClient: httpClient}
}

// Ack sends the envelope-correlated response for envelopeID. A nil resp sends a bare ack.
func (r *Responder) Ack(envelopeID string, resp *Response) error {
	frame, err := EncodeResponse(envelopeID, resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := r.sender.Send(frame); err != nil {
		metrics.ResponsesTotal.WithLabelValues("socket", "error").Inc()
		return err
	}
	metrics.ResponsesTotal.WithLabelValues("socket", "ok").Inc()
	logger.GetLogger().Debug("sent socket response", zap.String("envelope_id", envelopeID))
	return nil
}

// PostCallback POSTs msg as JSON to a response_url. Failures are *DeliveryError.
func (r *Responder) PostCallback(ctx context.Context, responseURL string, msg MessagePayload) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(body))
	if err != nil {
		metrics.ResponsesTotal.WithLabelValues("callback", "error").Inc()
		return &DeliveryError{URL: responseURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.ResponsesTotal.WithLabelValues("callback", "error").Inc()
		return &DeliveryError{URL: responseURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ResponsesTotal.WithLabelValues("callback", "non_2xx").Inc()
		return &DeliveryError{URL: responseURL, StatusCode: resp.StatusCode}
	}
	metrics.ResponsesTotal.WithLabelValues("callback", "ok").Inc()
	return nil
}
