package tribunal

import (
	"context"
	"errors"
	"log"

	"github.com/Yates-Labs/compujudge/internal/prompts"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/status"
	"github.com/Yates-Labs/compujudge/internal/temperature"
)

// Agent is one critic: an identity prompt plus its sampling profile.
type Agent struct {
	Kind            AgentKind
	SystemPrompt    string
	BaseTemperature float64
	Strict          bool
}

// DefaultPool returns the five agents in iterative dispatch order.
func DefaultPool(cat prompts.Catalogue) []Agent {
	return []Agent{
		{Kind: Logic, SystemPrompt: cat.Logic, BaseTemperature: 0.1, Strict: true},
		{Kind: Market, SystemPrompt: cat.Market, BaseTemperature: 0.5},
		{Kind: Soul, SystemPrompt: cat.Soul, BaseTemperature: 0.9},
		{Kind: Literary, SystemPrompt: cat.Literary, BaseTemperature: 0.3},
		{Kind: Jester, SystemPrompt: cat.Jester, BaseTemperature: 1.1},
	}
}

// Temperature resolves the agent's sampling temperature under policy.
func (a Agent) Temperature(policy temperature.Policy) float64 {
	return policy.Resolve(a.BaseTemperature, a.Strict)
}

// Run asks the agent to review payload. Transport and parse failures are
// absorbed into a sentinel report; only cancellation is returned as an error.
func (a Agent) Run(ctx context.Context, transport provider.Transport, policy temperature.Policy, payload string, sink status.Sink) (AgentReport, error) {
	raw, err := transport.Generate(ctx, provider.Request{
		Prompt:       payload,
		SystemPrompt: a.SystemPrompt,
		JSONMode:     true,
		Temperature:  provider.Temp(a.Temperature(policy)),
		OnStatus:     sink,
	})
	if err != nil {
		if errors.Is(err, provider.ErrCancelled) {
			return Sentinel(a.Kind), err
		}
		log.Printf("[Tribunal] %s call failed: %v", a.Kind.Title(), err)
		return Sentinel(a.Kind), nil
	}

	report, err := DecodeReport(a.Kind, raw)
	if err != nil {
		log.Printf("[Tribunal] %s returned unparseable output: %v", a.Kind.Title(), err)
	}
	return report, nil
}
