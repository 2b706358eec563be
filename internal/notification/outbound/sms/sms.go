// Package sms delivers authorization texts through an SMS gateway.
package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/stepup/internal/notification/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/config"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
)

const (
	DriverLog  = "log"
	DriverHTTP = "http"
)

// Gateway sends one SMS.
type Gateway interface {
	Send(ctx context.Context, msg entity.SMS) (entity.SendResult, error)
}

// NewFromConfig builds the gateway named by notification.sms.driver.
func NewFromConfig(cfg config.Config, ins instrument.Instrumentation) (Gateway, error) {
	switch driver := cfg.GetString("notification.sms.driver"); driver {
	case "", DriverLog:
		return NewLog(ins), nil
	case DriverHTTP:
		return NewHTTP(HTTPConfig{
			URL:        cfg.GetString("notification.sms.http.url"),
			Token:      cfg.GetString("notification.sms.http.token"),
			Rate:       cfg.GetFloat64("notification.sms.http.rate"),
			Burst:      cfg.GetInt("notification.sms.http.burst"),
			Timeout:    cfg.GetSecond("notification.sms.http.timeout"),
			MaxRetries: uint64(cfg.GetInt("notification.sms.http.max_retries")),
		}, ins)
	default:
		return nil, fmt.Errorf("sms: unknown driver %q", driver)
	}
}

const defaultTimeout = 10 * time.Second
