package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/stepup/internal/notification/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var (
	ErrGatewayURLRequired = errors.New("sms: gateway url is required")
	ErrRejected           = errors.New("sms: gateway rejected message")
)

type HTTPConfig struct {
	URL   string
	Token string
	// Rate is the sustained requests per second. Zero disables limiting.
	Rate  float64
	Burst int
	// Timeout bounds one request.
	Timeout    time.Duration
	MaxRetries uint64
	// Client overrides the default HTTP client.
	Client *http.Client
}

type gatewayRequest struct {
	Reference      string `json:"reference"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Text           string `json:"text"`
}

type gatewayResponse struct {
	ID string `json:"id"`
}

// HTTP posts messages to a JSON SMS gateway. Transport errors, 429 and 5xx
// answers are retried with exponential backoff.
type HTTP struct {
	cfg     HTTPConfig
	client  *http.Client
	limiter *rate.Limiter
	ins     instrument.Instrumentation
}

func NewHTTP(cfg HTTPConfig, ins instrument.Instrumentation) (*HTTP, error) {
	if cfg.URL == "" {
		return nil, ErrGatewayURLRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	return &HTTP{cfg: cfg, client: client, limiter: limiter, ins: ins}, nil
}

func (h *HTTP) Send(ctx context.Context, msg entity.SMS) (_ entity.SendResult, err error) {
	ctx, span := h.ins.Tracer("notification.outbound.sms").Start(ctx, "HTTP.Send")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(gatewayRequest{
		Reference:      msg.MessageID,
		UserID:         msg.UserID,
		OrganizationID: msg.OrganizationID,
		Text:           msg.Text,
	})
	if err != nil {
		return entity.SendResult{}, err
	}

	var resp gatewayResponse
	b := retry.WithMaxRetries(h.cfg.MaxRetries, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if err := h.limiter.Wait(ctx); err != nil {
			return err
		}
		return h.post(ctx, body, &resp)
	})
	if err != nil {
		return entity.SendResult{}, err
	}

	return entity.SendResult{Provider: DriverHTTP, ProviderID: resp.ID}, nil
}

func (h *HTTP) post(ctx context.Context, body []byte, out *gatewayResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.Token)
	}
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		req.Header.Set("X-Correlation-ID", cID)
	}

	res, err := h.client.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, res.Body)
		return retry.RetryableError(fmt.Errorf("sms: gateway answered %d", res.StatusCode))
	case res.StatusCode >= http.StatusBadRequest:
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("%w: status %d", ErrRejected, res.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
