package gpu

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/revolve/internal/engine/cache"
)

// compileProgram compiles vertex and fragment shaders and links them into a
// retrievable program.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.ProgramParameteri(program, gl.PROGRAM_BINARY_RETRIEVABLE_HINT, gl.TRUE)
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	if err := linkStatus(program); err != nil {
		gl.DeleteProgram(program)
		return 0, err
	}
	return program, nil
}

func linkStatus(program uint32) error {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status != gl.FALSE {
		return nil
	}
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	if logLen <= 0 {
		return fmt.Errorf("link failed")
	}
	log := make([]byte, logLen)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return fmt.Errorf("link: %s", string(log))
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, max(logLen, 1))
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}
	return shader, nil
}

// programKey identifies a program binary by driver and sources.
func programKey(renderer, version, vertexSrc, fragmentSrc string) string {
	h := fnv.New64a()
	for _, s := range []string{renderer, version, vertexSrc, fragmentSrc} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("program/%016x", h.Sum64())
}

// loadProgramBinary recreates a program from a cached binary. The blob is a
// little-endian binary format followed by the driver's bytes.
func loadProgramBinary(blob []byte) (uint32, bool) {
	if len(blob) <= 4 {
		return 0, false
	}
	format := binary.LittleEndian.Uint32(blob)
	data := blob[4:]

	program := gl.CreateProgram()
	gl.ProgramBinary(program, format, gl.Ptr(data), int32(len(data)))
	if linkStatus(program) != nil {
		gl.DeleteProgram(program)
		return 0, false
	}
	return program, true
}

func storeProgramBinary(store *cache.Store, key string, program uint32) {
	var length int32
	gl.GetProgramiv(program, gl.PROGRAM_BINARY_LENGTH, &length)
	if length <= 0 {
		return
	}
	blob := make([]byte, 4+int(length))
	var format uint32
	gl.GetProgramBinary(program, length, nil, &format, gl.Ptr(blob[4:]))
	binary.LittleEndian.PutUint32(blob, format)
	store.Put(key, blob)
}
