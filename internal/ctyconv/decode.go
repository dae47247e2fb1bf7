// Package ctyconv decodes evaluated step arguments into the typed input
// structs node handlers declare.
//
// Fields opt in with a `cty:"name"` tag. Primitive and plain-collection
// fields go through gocty with type conversion; cty.Value fields receive
// the evaluated value untouched; *tensor.Tensor and []*tensor.Tensor fields
// unwrap tensor capsules. A field tagged `cty:",remain"` of type
// map[string]cty.Value collects every attribute no other field consumed,
// which is how the pinned wrapper forwards a delegate's argument set
// without knowing its schema.
package ctyconv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/gridpin/internal/tensor"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	ctyValueType   = reflect.TypeOf(cty.Value{})
	tensorPtrType  = reflect.TypeOf((*tensor.Tensor)(nil))
	tensorListType = reflect.TypeOf([]*tensor.Tensor(nil))
	remainMapType  = reflect.TypeOf(map[string]cty.Value(nil))
)

// DecodeArgs populates the struct pointed to by target from args, guided by
// `cty` field tags.
func DecodeArgs(args map[string]cty.Value, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode target must be a non-nil struct pointer, got %T", target)
	}
	structVal := ptr.Elem()
	structType := structVal.Type()

	consumed := make(map[string]bool, len(args))
	remainField := -1

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("cty")
		if tag == ",remain" {
			if field.Type != remainMapType {
				return fmt.Errorf("field %s tagged cty:\",remain\" must be map[string]cty.Value", field.Name)
			}
			remainField = i
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		val, ok := args[name]
		if !ok {
			continue
		}
		consumed[name] = true
		if err := decodeField(val, structVal.Field(i)); err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}

	if remainField >= 0 {
		rest := make(map[string]cty.Value)
		for name, val := range args {
			if !consumed[name] {
				rest[name] = val
			}
		}
		structVal.Field(remainField).Set(reflect.ValueOf(rest))
	}
	return nil
}

func decodeField(val cty.Value, field reflect.Value) error {
	if val == cty.NilVal || !val.IsKnown() || val.IsNull() {
		return nil
	}

	switch field.Type() {
	case ctyValueType:
		field.Set(reflect.ValueOf(val))
		return nil

	case tensorPtrType:
		t, ok := tensor.FromVal(val)
		if !ok {
			return fmt.Errorf("expected a tensor, got %s", val.Type().FriendlyName())
		}
		field.Set(reflect.ValueOf(t))
		return nil

	case tensorListType:
		if !val.CanIterateElements() {
			return fmt.Errorf("expected a sequence of tensors, got %s", val.Type().FriendlyName())
		}
		var tensors []*tensor.Tensor
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			t, ok := tensor.FromVal(elem)
			if !ok {
				return fmt.Errorf("sequence element %d is not a tensor", len(tensors))
			}
			tensors = append(tensors, t)
		}
		field.Set(reflect.ValueOf(tensors))
		return nil
	}

	// Everything else goes through gocty, with conversion so e.g. an HCL
	// number literal lands in an int field.
	wantType, err := gocty.ImpliedType(field.Interface())
	if err != nil {
		return fmt.Errorf("cannot imply cty type for Go field type %s: %w", field.Type(), err)
	}
	converted, err := convert.Convert(val, wantType)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, field.Addr().Interface())
}
