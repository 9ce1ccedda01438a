package app

import (
	"testing"

	"github.com/rajveermalviya/go-webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestLinuxUsesVulkan(t *testing.T) {
	assert.Equal(t, wgpu.InstanceBackend_Vulkan, instanceBackends)
}
