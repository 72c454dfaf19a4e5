package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateVersionedCacheKey(t *testing.T) {
	a := GenerateVersionedCacheKey("gen:ollama/phi", "Show my bookings")
	b := GenerateVersionedCacheKey("gen:ollama/phi", "Show my bookings")
	c := GenerateVersionedCacheKey("gen:ollama/phi", "Show my trips")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "gen:ollama/phi:"))
	assert.True(t, strings.HasSuffix(a, ":tv1.0_pv1.0"))
	assert.NotContains(t, a, "Show my bookings")
}

func TestGenerateVersionedCacheKeyChangesWithVersion(t *testing.T) {
	before := GenerateVersionedCacheKey("p", "x")

	saved := ComponentVersions.PromptLogic
	ComponentVersions.PromptLogic = "v2.0"
	t.Cleanup(func() { ComponentVersions.PromptLogic = saved })

	assert.NotEqual(t, before, GenerateVersionedCacheKey("p", "x"))
}
