package pages

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/workflowpro/e2e/pkg/harness/config"
)

// pollInterval is the sampling interval for bounded element-state polls.
const pollInterval = 100 * time.Millisecond

// settleQuiet is how long the DOM must stay unchanged after navigation
// before the page counts as settled.
const settleQuiet = 500 * time.Millisecond

// BasePage implements the Surface contract over a Rod page. Concrete page
// objects embed it and add their domain queries.
type BasePage struct {
	page           *rod.Page
	timeout        time.Duration
	elementTimeout time.Duration
	navTimeout     time.Duration
	logger         *zap.Logger
}

// NewBasePage wraps a live page with the default timeouts.
func NewBasePage(page *rod.Page) *BasePage {
	return &BasePage{
		page:           page,
		timeout:        config.DefaultTimeout,
		elementTimeout: config.ElementTimeout,
		navTimeout:     config.NavigationTimeout,
		logger:         zap.NewNop(),
	}
}

// WithLogger sets the logger and returns the page for chaining.
func (b *BasePage) WithLogger(l *zap.Logger) *BasePage {
	b.logger = l
	return b
}

// Page exposes the underlying Rod page for operations outside the contract.
func (b *BasePage) Page() *rod.Page {
	return b.page
}

func pick(timeout []time.Duration, fallback time.Duration) time.Duration {
	if len(timeout) > 0 && timeout[0] > 0 {
		return timeout[0]
	}
	return fallback
}

// Navigate loads the URL and suspends until the page settles: load event
// fired and the DOM quiet for settleQuiet.
func (b *BasePage) Navigate(url string) error {
	p := b.page.Timeout(b.navTimeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("navigate to %s: wait load: %w", url, err)
	}
	if err := p.WaitStable(settleQuiet); err != nil {
		return fmt.Errorf("navigate to %s: wait settle: %w", url, err)
	}
	b.logger.Debug("navigated", zap.String("url", url))
	return nil
}

// WaitSettled waits for in-flight rendering to quiet down, bounded by the
// navigation timeout.
func (b *BasePage) WaitSettled() error {
	return b.page.Timeout(b.navTimeout).WaitStable(settleQuiet)
}

// Refresh reloads the current page and waits for it to settle.
func (b *BasePage) Refresh() error {
	p := b.page.Timeout(b.navTimeout)
	if err := p.Reload(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("refresh: wait load: %w", err)
	}
	return p.WaitStable(settleQuiet)
}

// CurrentURL returns the page's current URL.
func (b *BasePage) CurrentURL() (string, error) {
	info, err := b.page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// Click waits for the element to be actionable and clicks it.
func (b *BasePage) Click(selector string, timeout ...time.Duration) error {
	d := pick(timeout, b.timeout)
	el, err := b.page.Timeout(d).Element(selector)
	if err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// Fill waits for the element to be visible and replaces its content with
// text. Visibility is required here, unlike Click which only needs
// actionability.
func (b *BasePage) Fill(selector, text string, timeout ...time.Duration) error {
	d := pick(timeout, b.timeout)
	el, err := b.page.Timeout(d).Element(selector)
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("fill %q: wait visible: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("fill %q: select text: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

// GetText waits for the element to be visible and returns its text, or the
// empty string if the node has none.
func (b *BasePage) GetText(selector string, timeout ...time.Duration) (string, error) {
	d := pick(timeout, b.timeout)
	el, err := b.page.Timeout(d).Element(selector)
	if err != nil {
		return "", fmt.Errorf("get text %q: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return "", fmt.Errorf("get text %q: wait visible: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("get text %q: %w", selector, err)
	}
	return text, nil
}

// IsVisible polls for the element to become visible. Timeout-as-false is
// the contract; this method never errors.
func (b *BasePage) IsVisible(selector string, timeout ...time.Duration) bool {
	d := pick(timeout, b.elementTimeout)
	return b.pollState(selector, StateVisible, d) == nil
}

// WaitForElement is the generic wait primitive. It blocks until the element
// reaches the target state or the timeout elapses, in which case it returns
// an *AssertionError.
func (b *BasePage) WaitForElement(selector string, state ElementState, timeout ...time.Duration) error {
	return b.pollState(selector, state, pick(timeout, b.timeout))
}

// pollState samples the element's state at pollInterval until the target
// state holds or the deadline passes.
func (b *BasePage) pollState(selector string, state ElementState, d time.Duration) error {
	start := time.Now()
	deadline := start.Add(d)
	for {
		if b.stateHolds(selector, state) {
			return nil
		}
		if time.Now().After(deadline) {
			return &AssertionError{
				Selector:  selector,
				Condition: string(state),
				Elapsed:   time.Since(start),
			}
		}
		time.Sleep(pollInterval)
	}
}

func (b *BasePage) stateHolds(selector string, state ElementState) bool {
	has, el, err := b.page.Has(selector)
	if err != nil {
		return false
	}
	switch state {
	case StateAttached:
		return has
	case StateDetached:
		return !has
	case StateVisible:
		if !has {
			return false
		}
		visible, err := el.Visible()
		return err == nil && visible
	case StateHidden:
		if !has {
			return true
		}
		visible, err := el.Visible()
		return err == nil && !visible
	default:
		return false
	}
}

// AssertVisible fails with a structured error if the element never becomes
// visible within the timeout.
func (b *BasePage) AssertVisible(selector string, timeout ...time.Duration) error {
	return b.pollState(selector, StateVisible, pick(timeout, b.elementTimeout))
}

// AssertTextContains fails with a structured error if the element's text
// never contains the expected substring within the timeout.
func (b *BasePage) AssertTextContains(selector, text string, timeout ...time.Duration) error {
	d := pick(timeout, b.elementTimeout)
	start := time.Now()
	deadline := start.Add(d)
	for {
		if has, el, err := b.page.Has(selector); err == nil && has {
			if content, err := el.Text(); err == nil && strings.Contains(content, text) {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return &AssertionError{
				Selector:  selector,
				Condition: fmt.Sprintf("text containing %q", text),
				Elapsed:   time.Since(start),
			}
		}
		time.Sleep(pollInterval)
	}
}

// AssertURLContains fails if the current URL does not contain the fragment.
// Unlike the element asserts this checks once, without waiting.
func (b *BasePage) AssertURLContains(text string) error {
	url, err := b.CurrentURL()
	if err != nil {
		return err
	}
	if !strings.Contains(url, text) {
		return &AssertionError{
			Condition: fmt.Sprintf("URL %q containing %q", url, text),
		}
	}
	return nil
}

// WaitForURLContains polls the page URL until it contains the fragment or
// the timeout elapses.
func (b *BasePage) WaitForURLContains(text string, timeout ...time.Duration) error {
	d := pick(timeout, b.timeout)
	start := time.Now()
	deadline := start.Add(d)
	for {
		if url, err := b.CurrentURL(); err == nil && strings.Contains(url, text) {
			return nil
		}
		if time.Now().After(deadline) {
			return &AssertionError{
				Condition: fmt.Sprintf("URL containing %q", text),
				Elapsed:   time.Since(start),
			}
		}
		time.Sleep(pollInterval)
	}
}

// ScrollToElement scrolls the element into view.
func (b *BasePage) ScrollToElement(selector string) error {
	el, err := b.page.Timeout(b.elementTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("scroll to %q: %w", selector, err)
	}
	return el.ScrollIntoView()
}

// Screenshot captures the page into screenshots/<name>.png and returns the
// path. Diagnostic side channel only; failures here should not fail a test.
func (b *BasePage) Screenshot(name string) (string, error) {
	data, err := b.page.Screenshot(true, nil)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	path := filepath.Join("screenshots", name+".png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}
