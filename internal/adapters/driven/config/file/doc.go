// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (config.toml)
//   - PromptStore: user-editable prompt templates (prompts.toml)
//
// LoadSettings turns a ConfigStore plus RAGETS_* environment variables into
// domain.Settings.
package file
