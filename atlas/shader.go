package atlas

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/slice.wgsl
var sliceShaderSource string

// SliceShaderSource returns the WGSL source of the slice drawing shader.
// Entry points are vs_main and fs_main; each instance carries a destination
// rectangle and an atlas source rectangle.
func SliceShaderSource() string {
	return sliceShaderSource
}

// CompileSliceShader compiles the slice shader to SPIR-V words.
func CompileSliceShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(sliceShaderSource)
	if err != nil {
		return nil, fmt.Errorf("atlas: compile slice shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirv, nil
}

// CreateSliceShaderModule compiles the slice shader and creates a shader
// module on device.
func CreateSliceShaderModule(device hal.Device) (hal.ShaderModule, error) {
	spirv, err := CompileSliceShader()
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "cellimage_slice",
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
}
