package ua

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewVariant(t *testing.T) {
	tests := []struct {
		name  string
		value any
		typ   TypeID
		array bool
		len   int
	}{
		{"Nil", nil, TypeNull, false, -1},
		{"Bool", true, TypeBoolean, false, -1},
		{"SByte", int8(-1), TypeSByte, false, -1},
		{"Byte", uint8(1), TypeByte, false, -1},
		{"Int32", int32(7), TypeInt32, false, -1},
		{"Double", 1.5, TypeDouble, false, -1},
		{"String", "abc", TypeString, false, -1},
		{"DateTime", time.Unix(0, 0), TypeDateTime, false, -1},
		{"GUID", uuid.New(), TypeGUID, false, -1},
		{"ByteString", []byte{1, 2}, TypeByteString, false, -1},
		{"NodeID", Server, TypeNodeID, false, -1},
		{"LocalizedText", NewLocalizedText("x"), TypeLocalizedText, false, -1},
		{"ExtensionObject", ExtensionObject{}, TypeExtensionObject, false, -1},
		{"Int32Array", []int32{1, 2, 3}, TypeInt32, true, 3},
		{"StringArray", []string{"a"}, TypeString, true, 1},
		{"NilSlice", []float64(nil), TypeDouble, true, 0},
		{"ExtensionObjectArray", []ExtensionObject{{}, {}}, TypeExtensionObject, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVariant(tt.value)
			if err != nil {
				t.Fatalf("NewVariant failed: %v", err)
			}
			if v.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", v.Type(), tt.typ)
			}
			if v.IsArray() != tt.array {
				t.Errorf("IsArray() = %v, want %v", v.IsArray(), tt.array)
			}
			if v.Len() != tt.len {
				t.Errorf("Len() = %d, want %d", v.Len(), tt.len)
			}
		})
	}
}

func TestNewVariant_Unsupported(t *testing.T) {
	_, err := NewVariant(struct{}{})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("expected ErrUnsupportedValue, got %v", err)
	}

	_, err = NewVariant(int(5))
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("int should be unsupported, got %v", err)
	}
}

func TestParseAttributeID(t *testing.T) {
	tests := []struct {
		input string
		want  AttributeID
		ok    bool
	}{
		{"Value", AttributeValue, true},
		{"value", AttributeValue, true},
		{"13", AttributeValue, true},
		{"BrowseName", AttributeBrowseName, true},
		{"AccessLevelEx", AttributeAccessLevelEx, true},
		{"0", 0, false},
		{"99", 0, false},
		{"Nope", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAttributeID(tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseAttributeID(%q) err = %v, want ok=%v", tt.input, err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if !tt.ok && !errors.Is(err, StatusBadAttributeIDInvalid) {
				t.Errorf("expected Bad_AttributeIdInvalid, got %v", err)
			}
		})
	}
}

func TestParseQualifiedName(t *testing.T) {
	tests := []struct {
		input string
		want  QualifiedName
	}{
		{"ServerStatus", NewQualifiedName(0, "ServerStatus")},
		{"2:Motor", NewQualifiedName(2, "Motor")},
		{"x:y", NewQualifiedName(0, "x:y")},
	}

	for _, tt := range tests {
		got := ParseQualifiedName(tt.input)
		if got != tt.want {
			t.Errorf("ParseQualifiedName(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
		if tt.want.NamespaceIndex != 0 && got.String() != tt.input {
			t.Errorf("String() = %q, want %q", got.String(), tt.input)
		}
	}
}
