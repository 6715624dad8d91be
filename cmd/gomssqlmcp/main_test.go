package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigPath(t *testing.T) {
	t.Setenv("GOMSSQLMCP_CONFIG_PATH", "")
	assert.Equal(t, defaultConfigPath, (&cmdGlobal{}).configPath())

	t.Setenv("GOMSSQLMCP_CONFIG_PATH", "/etc/gomssqlmcp.json")
	assert.Equal(t, "/etc/gomssqlmcp.json", (&cmdGlobal{}).configPath())

	assert.Equal(t, "custom.json", (&cmdGlobal{flagConfig: "custom.json"}).configPath())
}
