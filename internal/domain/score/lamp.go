// Package score models per-chart score observations and their monotonic merge.
package score

import "fmt"

// Lamp is the clear status of a play. Values are ordered: a greater Lamp is a better result.
type Lamp uint8

// Lamps in ascending order.
const (
	LampFail Lamp = iota
	LampClear
	LampLife4
	LampGoodFullCombo
	LampGreatFullCombo
	LampPerfectFullCombo
	LampMarvelousFullCombo
)

var lampNames = [...]string{"Fail", "Clear", "Life4", "GoodFC", "GreatFC", "PFC", "MFC"}

func (l Lamp) String() string {
	if int(l) < len(lampNames) {
		return lampNames[l]
	}
	return fmt.Sprintf("Lamp(%d)", uint8(l))
}

// IsFullCombo reports whether l is any full combo lamp.
func (l Lamp) IsFullCombo() bool { return l >= LampGoodFullCombo && l <= LampMarvelousFullCombo }

// PrimaryLamp decodes the primary source's lamp code (0..6, in Lamp order).
func PrimaryLamp(code int) (Lamp, error) {
	if code < 0 || code > int(LampMarvelousFullCombo) {
		return 0, fmt.Errorf("%w: primary code %d", ErrUnknownLamp, code)
	}
	return Lamp(code), nil
}

// secondaryLamps maps the secondary source's full combo codes. The secondary
// source does not distinguish fail, clear and life4, so a play without a full
// combo maps to the lowest lamp.
var secondaryLamps = map[int]Lamp{
	0: LampFail,
	1: LampGreatFullCombo,
	2: LampPerfectFullCombo,
	3: LampMarvelousFullCombo,
	4: LampGoodFullCombo,
}

// SecondaryLamp decodes the secondary source's full combo code.
func SecondaryLamp(code int) (Lamp, error) {
	l, ok := secondaryLamps[code]
	if !ok {
		return 0, fmt.Errorf("%w: secondary code %d", ErrUnknownLamp, code)
	}
	return l, nil
}
