// Package pages implements page objects for the WorkFlow Pro UI. Every page
// type satisfies the Surface contract: wait-qualified navigation, element
// interaction, and visibility assertions over a live browser page.
package pages

import (
	"fmt"
	"time"
)

// ElementState is a target state for WaitForElement.
type ElementState string

const (
	StateVisible  ElementState = "visible"
	StateHidden   ElementState = "hidden"
	StateAttached ElementState = "attached"
	StateDetached ElementState = "detached"
)

// Surface is the capability set shared by all page objects.
//
// The query family (IsVisible, GetText) reports negatives as plain values:
// a timeout is false or empty, never an error. The assert family
// (AssertVisible, AssertTextContains, AssertURLContains) raises a structured
// *AssertionError instead, so callers choose fail-fast vs. soft-check
// semantics explicitly.
type Surface interface {
	Navigate(url string) error
	Click(selector string, timeout ...time.Duration) error
	Fill(selector, text string, timeout ...time.Duration) error
	GetText(selector string, timeout ...time.Duration) (string, error)
	IsVisible(selector string, timeout ...time.Duration) bool
	WaitForElement(selector string, state ElementState, timeout ...time.Duration) error
	AssertVisible(selector string, timeout ...time.Duration) error
	AssertTextContains(selector, text string, timeout ...time.Duration) error
	AssertURLContains(text string) error
}

// AssertionError reports an element or URL that never reached the expected
// state. It carries the selector, the awaited condition, and the elapsed
// wait so failures are diagnosable without a screenshot.
type AssertionError struct {
	Selector  string
	Condition string
	Elapsed   time.Duration
}

func (e *AssertionError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("assertion failed: %s (waited %s)", e.Condition, e.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("assertion failed: %q never became %s (waited %s)",
		e.Selector, e.Condition, e.Elapsed.Round(time.Millisecond))
}
