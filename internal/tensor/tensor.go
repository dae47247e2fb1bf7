// Package tensor provides the dense array values that flow between media
// nodes, each carrying an explicit device placement, plus the cty capsule
// type that lets them travel inside grid value structures next to ordinary
// strings and numbers.
package tensor

import (
	"fmt"
	"reflect"

	"github.com/vk/gridpin/internal/device"
	"github.com/zclconf/go-cty/cty"
)

// DType enumerates the element types a Tensor can carry.
type DType string

const (
	Float32 DType = "float32"
	Uint8   DType = "uint8"
)

// Size returns the width of one element in bytes, or 0 for an unknown dtype.
func (d DType) Size() int {
	switch d {
	case Float32:
		return 4
	case Uint8:
		return 1
	}
	return 0
}

// Tensor is a dense n-dimensional array with an explicit device placement.
// Tensors are immutable handles: relocation returns a new handle rather
// than mutating in place.
type Tensor struct {
	dtype DType
	shape []int
	dev   device.Device
	data  []byte
}

// New allocates a zero-filled tensor of the given dtype and shape on dev.
func New(dtype DType, shape []int, dev device.Device) (*Tensor, error) {
	n, err := elems(shape)
	if err != nil {
		return nil, err
	}
	width := dtype.Size()
	if width == 0 {
		return nil, fmt.Errorf("unknown dtype %q", dtype)
	}
	return &Tensor{
		dtype: dtype,
		shape: append([]int(nil), shape...),
		dev:   dev,
		data:  make([]byte, n*width),
	}, nil
}

// FromBytes wraps raw element data in a tensor. The buffer length must
// match the shape and dtype exactly; the buffer is not copied.
func FromBytes(dtype DType, shape []int, dev device.Device, data []byte) (*Tensor, error) {
	n, err := elems(shape)
	if err != nil {
		return nil, err
	}
	width := dtype.Size()
	if width == 0 {
		return nil, fmt.Errorf("unknown dtype %q", dtype)
	}
	if len(data) != n*width {
		return nil, fmt.Errorf("buffer holds %d bytes, shape %v of %s needs %d", len(data), shape, dtype, n*width)
	}
	return &Tensor{
		dtype: dtype,
		shape: append([]int(nil), shape...),
		dev:   dev,
		data:  data,
	}, nil
}

func elems(shape []int) (int, error) {
	n := 1
	for _, dim := range shape {
		if dim <= 0 {
			return 0, fmt.Errorf("invalid dimension %d in shape %v", dim, shape)
		}
		n *= dim
	}
	return n, nil
}

// DType returns the element type.
func (t *Tensor) DType() DType { return t.dtype }

// Shape returns a copy of the dimension sizes.
func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

// Device returns the device this tensor is placed on.
func (t *Tensor) Device() device.Device { return t.dev }

// Elems returns the total element count.
func (t *Tensor) Elems() int {
	n, _ := elems(t.shape)
	return n
}

// Bytes returns the raw element buffer. Callers must not mutate it.
func (t *Tensor) Bytes() []byte { return t.data }

// To returns a tensor with the same contents placed on target. Moving to
// the current placement returns the receiver unchanged. A target the
// device layer does not recognize yields a device.ErrUnavailable error.
func (t *Tensor) To(target device.Device) (*Tensor, error) {
	if err := device.Validate(target); err != nil {
		return nil, err
	}
	if t.dev == target {
		return t, nil
	}
	data := make([]byte, len(t.data))
	copy(data, t.data)
	return &Tensor{
		dtype: t.dtype,
		shape: append([]int(nil), t.shape...),
		dev:   target,
		data:  data,
	}, nil
}

// String renders a short placement-and-shape summary, e.g.
// "tensor(uint8, [240 320 3], cuda:1)".
func (t *Tensor) String() string {
	return fmt.Sprintf("tensor(%s, %v, %s)", t.dtype, t.shape, t.dev)
}

// Type is the cty capsule type carrying *Tensor values through the grid
// value model.
var Type = cty.Capsule("tensor", reflect.TypeOf(Tensor{}))

// Val wraps t in a cty capsule value.
func Val(t *Tensor) cty.Value { return cty.CapsuleVal(Type, t) }

// FromVal unwraps a tensor capsule. ok is false for every other value,
// including nulls.
func FromVal(v cty.Value) (t *Tensor, ok bool) {
	if v == cty.NilVal || v.IsNull() || !v.Type().Equals(Type) {
		return nil, false
	}
	return v.EncapsulatedValue().(*Tensor), true
}
