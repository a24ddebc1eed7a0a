package service

import (
	"context"
	"fmt"
	"sort"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/repository"
	"dailyart/shared/pkg/helpers"
)

// DefaultPrompt is used for periods without a stored prompt.
const DefaultPrompt = "Alien Invasion"

type PromptService interface {
	PromptFor(ctx context.Context, period clock.Period) (string, error)
	SetPrompt(ctx context.Context, period clock.Period, text string) error
	// Seed stores every entry of schedule and returns how many were written.
	Seed(ctx context.Context, schedule map[string]string) (int, error)
}

type promptService struct {
	prompts       repository.PromptRepository
	resolver      *clock.Resolver
	defaultPrompt string
	validator     *helpers.CustomValidator
}

type promptInput struct {
	Period clock.Period `json:"period" validate:"required,period"`
	Prompt string       `json:"prompt" validate:"notblank,max=255"`
}

func NewPromptService(prompts repository.PromptRepository, resolver *clock.Resolver, defaultPrompt string) PromptService {
	if defaultPrompt == "" {
		defaultPrompt = DefaultPrompt
	}
	return &promptService{
		prompts:       prompts,
		resolver:      resolver,
		defaultPrompt: defaultPrompt,
		validator:     helpers.NewCustomValidator(),
	}
}

func (s *promptService) PromptFor(ctx context.Context, period clock.Period) (string, error) {
	p, err := s.prompts.Get(ctx, period)
	if err != nil {
		return "", storageErr("get prompt", err)
	}
	if p == nil {
		return s.defaultPrompt, nil
	}
	return p.Prompt, nil
}

func (s *promptService) SetPrompt(ctx context.Context, period clock.Period, text string) error {
	if err := s.validator.Validate(promptInput{Period: period, Prompt: text}); err != nil {
		return invalidInput(err)
	}
	if err := s.prompts.Upsert(ctx, period, text, s.resolver.Now()); err != nil {
		return storageErr("set prompt", err)
	}
	return nil
}

func (s *promptService) Seed(ctx context.Context, schedule map[string]string) (int, error) {
	keys := make([]string, 0, len(schedule))
	for k := range schedule {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	written := 0
	for _, k := range keys {
		period, err := clock.Parse(k)
		if err != nil {
			return written, invalidInput(err)
		}
		if err := s.SetPrompt(ctx, period, schedule[k]); err != nil {
			return written, fmt.Errorf("prompt %s: %w", k, err)
		}
		written++
	}
	return written, nil
}
