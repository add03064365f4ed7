package model

import "errors"

var (
	// ErrDataInsufficient means the latest indicator values are undefined.
	ErrDataInsufficient = errors.New("data insufficient")
	// ErrUpstreamUnavailable means the bar source failed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDeliveryFailed means the notifier call failed or returned a non-success status.
	ErrDeliveryFailed = errors.New("delivery failed")
)
