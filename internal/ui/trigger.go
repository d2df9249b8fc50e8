package ui

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// ErrNoMatch is returned when a selector matches no element.
var ErrNoMatch = errors.New("selector matched no element")

// Trigger dispatches event to target and runs one reactivity tick, so state
// changes caused by the event are rendered when Trigger returns.
func Trigger(inst *Instance, event string, target *html.Node) error {
	if target == nil {
		return fmt.Errorf("trigger %s: nil target", event)
	}
	if err := inst.Dispatch(event, target); err != nil {
		return err
	}
	inst.loop.Tick()
	return nil
}

// Click triggers a click on the first element matching selector.
func Click(inst *Instance, selector string) error {
	n, err := inst.First(selector)
	if err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return Trigger(inst, "click", n)
}

// Submit triggers a submit on the first element matching selector.
func Submit(inst *Instance, selector string) error {
	n, err := inst.First(selector)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return Trigger(inst, "submit", n)
}

// Field is one form control to fill.
type Field struct {
	Selector string
	Value    string
}

// FillForm sets each field's value and triggers input on it, in order.
func FillForm(inst *Instance, fields ...Field) error {
	for _, f := range fields {
		n, err := inst.First(f.Selector)
		if err != nil {
			return fmt.Errorf("fill form: %w", err)
		}
		SetAttr(n, "value", f.Value)
		if err := Trigger(inst, "input", n); err != nil {
			return fmt.Errorf("fill form: %w", err)
		}
	}
	return nil
}
