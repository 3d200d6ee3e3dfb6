// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the sercha-rag config directory.
//
// Adapters:
//   - ConfigStore: TOML settings file with dotted keys
//   - PromptStore: user-editable agent prompts
package file
