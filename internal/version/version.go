// In file: internal/version/version.go

// Package version centralizes the versioning for the logical components whose
// behaviour changes what the model is asked.
//
// The versions are part of every generation cache key. Bumping one after changing
// the prompt wording or a tool's parameters makes old cached answers unreachable,
// so they expire instead of being served against the new prompt.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the parts that shape prompts.
// Increment one here before deploying a change to that component.
var ComponentVersions = struct {
	// Tools changes when a tool's name, description, or parameter schema changes.
	Tools string

	// PromptLogic changes when the prompt template or worked examples change.
	PromptLogic string
}{
	Tools:       "v1.0",
	PromptLogic: "v1.0",
}

// GenerateVersionedCacheKey builds a cache key from a prefix, a hash of the
// prompt, and the current component versions.
//
// Example output: "gen:ollama/phi:a1b2c3d4...:tv1.0_pv1.0"
func GenerateVersionedCacheKey(prefix, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	promptHash := hex.EncodeToString(sum[:])

	versionString := fmt.Sprintf("tv%s_pv%s",
		ComponentVersions.Tools,
		ComponentVersions.PromptLogic,
	)
	return fmt.Sprintf("%s:%s:%s", prefix, promptHash, versionString)
}
