package cmd

import (
	"fmt"

	"github.com/Yates-Labs/compujudge/internal/config"
	"github.com/Yates-Labs/compujudge/internal/orchestrator"
	"github.com/Yates-Labs/compujudge/internal/prompts"
	"github.com/Yates-Labs/compujudge/internal/provider"
	"github.com/Yates-Labs/compujudge/internal/store"
)

// session is everything a command needs to grade and persist.
type session struct {
	settings *config.Settings
	grader   *orchestrator.Orchestrator
	store    *store.FileStore
}

func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if promptsFile != "" {
		settings.PromptsFile = promptsFile
	}
	return settings, nil
}

func openStore(settings *config.Settings) (*store.FileStore, error) {
	st, err := store.New(settings.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}
	return st, nil
}

// openSession wires settings, prompts, transport, orchestrator and store.
// tweak adjusts the pipeline config after settings are applied.
func openSession(tweak func(*orchestrator.Config)) (*session, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	catalogue, err := prompts.Load(settings.PromptsFile)
	if err != nil {
		return nil, err
	}

	transport, err := provider.New(settings.ProviderConfig())
	if err != nil {
		return nil, err
	}

	oc := settings.OrchestratorConfig()
	if tweak != nil {
		tweak(&oc)
	}
	grader, err := orchestrator.New(oc, transport, catalogue, orchestrator.WithMetrics(orchestrator.DefaultMetrics()))
	if err != nil {
		return nil, err
	}

	st, err := openStore(settings)
	if err != nil {
		return nil, err
	}

	return &session{settings: settings, grader: grader, store: st}, nil
}
