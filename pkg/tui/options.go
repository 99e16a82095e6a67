package tui

// Theme captures optional prefixes the runner applies when printing
// messages. Keep minimal to avoid coupling the flow to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme marks errors so they stand out in plain terminals.
func DefaultTheme() Theme {
	return Theme{ErrorPrefix: "✗ ", InfoPrefix: "✓ "}
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}
