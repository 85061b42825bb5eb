package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// maxUniformSlots is the number of uniform block bindings Command manages.
const maxUniformSlots = 4

// packUniform lays data out for a std140 uniform block. data must be a
// fixed-size value whose fields already follow std140 order and alignment
// (mat4, vec4 and scalars do); the result is padded to 16 bytes.
func packUniform(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("packing uniform %T: %w", data, err)
	}
	if rem := buf.Len() % 16; rem != 0 {
		buf.Write(make([]byte, 16-rem))
	}
	return buf.Bytes(), nil
}
