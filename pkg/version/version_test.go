package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.3"
	Commit = "abc123"
	t.Cleanup(func() { Commit = "" })

	info := Get()

	assert.Equal(t, "v1.2.3", info.GitVersion)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.Equal(t, appName, info.Name)
	assert.Contains(t, info.String(), "v1.2.3")
}
