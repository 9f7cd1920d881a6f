package config

// configurationValidator checks the merged configuration once every layer
// has been applied.
type configurationValidator struct {
	config *EffectiveConfig
}

func newValidator(cfg *EffectiveConfig) *configurationValidator {
	return &configurationValidator{config: cfg}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateModel(); err != nil {
		return err
	}
	if err := cv.validateRetry(); err != nil {
		return err
	}
	if err := cv.validateOutput(); err != nil {
		return err
	}
	return cv.validateAnalysis()
}

func (cv *configurationValidator) validateModel() error {
	m := cv.config.Model
	switch m.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return invalid("model.provider", "unsupported provider %q", m.Provider)
	}
	if m.ID == "" {
		return invalid("model.id", "must not be empty")
	}
	if m.MaxTokens <= 0 {
		return invalid("model.max_tokens", "must be positive, got %d", m.MaxTokens)
	}
	if m.ResponseReserve <= 0 || m.ResponseReserve >= m.MaxTokens {
		return invalid("model.response_reserve", "must be between 1 and max_tokens-1, got %d", m.ResponseReserve)
	}
	if m.Temperature < 0 || m.Temperature > 2 {
		return invalid("model.temperature", "must be within [0, 2], got %g", m.Temperature)
	}
	if m.TopP <= 0 || m.TopP > 1 {
		return invalid("model.top_p", "must be within (0, 1], got %g", m.TopP)
	}
	if m.Timeout <= 0 {
		return invalid("model.timeout", "must be positive, got %s", m.Timeout)
	}
	return nil
}

func (cv *configurationValidator) validateRetry() error {
	r := cv.config.Model.Retry
	if r.MaxAttempts < 1 || r.MaxAttempts > 10 {
		return invalid("model.retry.max_attempts", "must be within [1, 10], got %d", r.MaxAttempts)
	}
	if r.InitialDelay < 0 || r.MaxDelay < 0 {
		return invalid("model.retry", "delays must not be negative")
	}
	if r.MaxDelay < r.InitialDelay {
		return invalid("model.retry.max_delay", "must be >= initial_delay")
	}
	return nil
}

func (cv *configurationValidator) validateOutput() error {
	if cv.config.Output.Suffix == "" {
		return invalid("output.suffix", "must not be empty")
	}
	if cv.config.Template == "" {
		return invalid("template", "must not be empty")
	}
	return nil
}

func (cv *configurationValidator) validateAnalysis() error {
	if cv.config.Analysis.StructureDepth < 0 {
		return invalid("analysis.structure_depth", "must not be negative, got %d", cv.config.Analysis.StructureDepth)
	}
	return nil
}
