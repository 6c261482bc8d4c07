package commentary

import (
	"context"
	"errors"

	"github.com/vovakirdan/neonsnake/internal/registry"
)

// ErrOffline is returned by the off backend.
var ErrOffline = errors.New("commentary: offline")

// Off never produces commentary; callers show their fallback text.
type Off struct{}

// Summarize implements registry.Commentator.
func (Off) Summarize(context.Context, int) (string, error) {
	return "", ErrOffline
}

func init() {
	registry.Register("phrases", "Local arcade phrase table", func(opts registry.Options) (registry.Commentator, error) {
		return NewPhrases(opts.Seed, opts.Latency), nil
	})
	registry.Register("remote", "HTTP endpoint speaking the commentary JSON contract", func(opts registry.Options) (registry.Commentator, error) {
		if opts.URL == "" {
			return nil, errors.New("commentary: remote backend requires a url")
		}
		return NewRemote(opts.URL, opts.Timeout), nil
	})
	registry.Register("off", "No commentary", func(registry.Options) (registry.Commentator, error) {
		return Off{}, nil
	})
}
