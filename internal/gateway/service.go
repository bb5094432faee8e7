package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payum-server/payum_server/internal/notification"
)

// Service manages gateway configs. Sensitive options are sealed before they
// reach the repository and opened on the way out.
type Service struct {
	repo      Repository
	factories *Registry
	sealer    *Sealer
	notifier  notification.Notifier
	logger    *slog.Logger
}

// NewService builds a gateway service. sealer may be nil.
func NewService(repo Repository, factories *Registry, sealer *Sealer, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, factories: factories, sealer: sealer, notifier: notifier, logger: logger}
}

// Factories returns the factory registry.
func (s *Service) Factories() *Registry {
	return s.factories
}

// Create stores cfg. It fails with ErrUnknownFactory or ErrExists.
func (s *Service) Create(ctx context.Context, cfg Config) (Config, error) {
	factory, ok := s.factories.Get(cfg.FactoryName)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownFactory, cfg.FactoryName)
	}

	sealed, err := s.transform(factory, cfg, s.sealer.Seal)
	if err != nil {
		return Config{}, err
	}
	if err := s.repo.Create(ctx, sealed); err != nil {
		return Config{}, err
	}

	s.notify(ctx, notification.KindGatewayCreated, cfg.GatewayName)
	return cfg, nil
}

// Get returns the named config with its secrets opened.
func (s *Service) Get(ctx context.Context, name string) (Config, error) {
	cfg, err := s.repo.Get(ctx, name)
	if err != nil {
		return Config{}, err
	}
	return s.open(cfg)
}

// All returns every config ordered by name.
func (s *Service) All(ctx context.Context) ([]Config, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Config, 0, len(stored))
	for _, cfg := range stored {
		opened, err := s.open(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, opened)
	}
	return out, nil
}

// Names lists the configured gateway names.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(stored))
	for i, cfg := range stored {
		names[i] = cfg.GatewayName
	}
	return names, nil
}

// Delete removes the named config.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.notify(ctx, notification.KindGatewayDeleted, name)
	return nil
}

func (s *Service) open(cfg Config) (Config, error) {
	factory, ok := s.factories.Get(cfg.FactoryName)
	if !ok {
		// Factory was removed from the registry; nothing is known to be sealed.
		return cfg, nil
	}
	return s.transform(factory, cfg, s.sealer.Open)
}

// transform returns a copy of cfg with fn applied to its sensitive string options.
func (s *Service) transform(factory Factory, cfg Config, fn func(value, context string) (string, error)) (Config, error) {
	out := cfg
	out.Config = make(map[string]any, len(cfg.Config))
	for k, v := range cfg.Config {
		str, ok := v.(string)
		if !ok || !factory.IsSensitive(k) {
			out.Config[k] = v
			continue
		}
		converted, err := fn(str, cfg.GatewayName+"/"+k)
		if err != nil {
			return Config{}, fmt.Errorf("gateway %s option %s: %w", cfg.GatewayName, k, err)
		}
		out.Config[k] = converted
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, kind, name string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notification.Message{Kind: kind, Subject: name}); err != nil && s.logger != nil {
		s.logger.Warn("gateway notification failed", slog.String("kind", kind), slog.String("gateway", name), slog.Any("error", err))
	}
}
