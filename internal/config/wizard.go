package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the
// resulting Config to .pmdoc.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to pmdoc! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Lead provider. The remaining providers keep the default
	// fallback order behind it.
	providerPrompt := promptui.Select{
		Label: "Select primary LLM provider",
		Items: []string{"anthropic", "openai", "google", "ollama", "minimax", "openrouter"},
	}
	_, lead, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Providers = providerOrder(lead)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   — fast & cheap",
			"normal — balanced",
			"max    — highest quality",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	cfg.Quality = tiers[qualityIdx]
	cfg.Model = GetPreset(lead, cfg.Quality).Model

	// 3. Context budget.
	tokensPrompt := promptui.Prompt{
		Label:   "Max context tokens per document",
		Default: strconv.Itoa(cfg.Context.MaxTokens),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("enter a positive number")
			}
			return nil
		},
	}
	tokensStr, err := tokensPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("context tokens: %w", err)
	}
	cfg.Context.MaxTokens, _ = strconv.Atoi(tokensStr)

	// 4. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for exported documents",
		Default: cfg.OutputDir,
	}
	cfg.OutputDir, err = outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// 5. Cost ceiling.
	costPrompt := promptui.Prompt{
		Label:   "Per-project cost ceiling in USD (0 to disable)",
		Default: fmt.Sprintf("%.2f", cfg.MaxCostUSD),
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 {
				return fmt.Errorf("enter a non-negative amount")
			}
			return nil
		},
	}
	costStr, err := costPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cost ceiling: %w", err)
	}
	cfg.MaxCostUSD, _ = strconv.ParseFloat(costStr, 64)

	if envVar := APIKeyEnvVar(lead); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: set %s in your environment before running pmdoc generate.\n", envVar)
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

// providerOrder puts lead first and keeps the default order for the rest.
func providerOrder(lead string) []string {
	order := []string{lead}
	for _, p := range DefaultConfig().Providers {
		if !strings.EqualFold(p, lead) {
			order = append(order, p)
		}
	}
	return order
}
