package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/node"
	"github.com/smnsjas/go-uaproxy/objects"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Analog is a snapshot of an analog item variable.
type Analog struct {
	Value   float64
	EURange objects.Range
	Units   codec.Option[objects.EUInformation]
}

// InRange reports whether Value lies within EURange.
func (a Analog) InRange() bool {
	return a.EURange.Contains(a.Value)
}

// Percent returns Value as a percentage of EURange. An empty range yields 0.
func (a Analog) Percent() float64 {
	span := a.EURange.High - a.EURange.Low
	if span == 0 {
		return 0
	}
	return (a.Value - a.EURange.Low) / span * 100
}

// ReadAnalog reads the value, range and units of an analog item. The three
// reads are issued together. EngineeringUnits is optional; its absence
// yields None.
func ReadAnalog(ctx context.Context, item *node.Proxy) (Analog, error) {
	valueF := item.ReadAttributeAsync(ctx, ua.AttributeValue)
	rangeF := node.ReadAsync(ctx, item, AnalogEURange)
	unitsF := node.ReadAsync(ctx, item, AnalogEngineeringUnits)

	var a Analog
	dv, err := valueF.Await(ctx)
	if err != nil {
		return a, ua.Translate(err)
	}
	if a.Value, err = numeric(dv.Value); err != nil {
		return a, err
	}
	if a.EURange, err = rangeF.Await(ctx); err != nil {
		return a, ua.Translate(err)
	}

	units, err := unitsF.Await(ctx)
	switch {
	case err == nil:
		a.Units = codec.Some(units)
	case errors.Is(err, node.ErrMemberNotFound):
		a.Units = codec.None[objects.EUInformation]()
	default:
		return a, ua.Translate(err)
	}
	return a, nil
}

func numeric(v ua.Variant) (float64, error) {
	if v.IsArray() {
		return 0, ua.NewStatusError(ua.StatusBadTypeMismatch, "analog value is an array")
	}
	switch x := v.Value().(type) {
	case int8:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	}
	return 0, ua.NewStatusError(ua.StatusBadTypeMismatch, fmt.Sprintf("analog value is %s", v.Type()))
}
