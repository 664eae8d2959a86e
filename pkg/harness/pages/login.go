package pages

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// Login page selectors.
const (
	emailInput    = "#email"
	passwordInput = "#password"
	loginButton   = "#login-btn"
	errorMessage  = ".error-message"
	twoFAInput    = "#two-fa-code"
	twoFASubmit   = "#two-fa-submit"
)

// twoFAProbeTimeout bounds the wait for the 2FA prompt. If the input never
// appears within this window the flow proceeds as if 2FA is disabled.
const twoFAProbeTimeout = 5 * time.Second

// LoginPage drives the login flow. Submitting credentials leaves the page
// in one of two states: authenticated (dashboard URL) or login error (error
// element visible).
type LoginPage struct {
	*BasePage
	baseURL string
}

// NewLoginPage wraps a page for the tenant web app rooted at baseURL.
func NewLoginPage(page *rod.Page, baseURL string) *LoginPage {
	return &LoginPage{BasePage: NewBasePage(page), baseURL: baseURL}
}

// NavigateToLogin opens the login page and waits for the email field.
func (l *LoginPage) NavigateToLogin() error {
	if err := l.Navigate(l.baseURL + "/login"); err != nil {
		return err
	}
	return l.WaitForElement(emailInput, StateVisible)
}

// Login navigates to the login page, fills credentials, and submits.
// The outcome is checked separately via IsLoginSuccessful or
// AssertLoginError.
func (l *LoginPage) Login(email, password string) error {
	if err := l.NavigateToLogin(); err != nil {
		return err
	}
	if err := l.Fill(emailInput, email); err != nil {
		return err
	}
	if err := l.Fill(passwordInput, password); err != nil {
		return err
	}
	return l.Click(loginButton)
}

// LoginWith2FA performs a login and, if a second-factor prompt appears
// within a short polling window, submits the code. A prompt that never
// appears means 2FA is disabled for the user and the flow continues.
func (l *LoginPage) LoginWith2FA(email, password, code string) error {
	if err := l.Login(email, password); err != nil {
		return err
	}
	if !l.IsVisible(twoFAInput, twoFAProbeTimeout) {
		return nil
	}
	if err := l.Fill(twoFAInput, code); err != nil {
		return fmt.Errorf("submit 2fa code: %w", err)
	}
	return l.Click(twoFASubmit)
}

// IsLoginSuccessful reports whether the session reached the dashboard.
func (l *LoginPage) IsLoginSuccessful() bool {
	return l.WaitForURLContains("/dashboard") == nil
}

// GetErrorMessage returns the login error text, or "" when no error is
// shown.
func (l *LoginPage) GetErrorMessage() string {
	if !l.IsVisible(errorMessage) {
		return ""
	}
	text, err := l.GetText(errorMessage)
	if err != nil {
		return ""
	}
	return text
}

// AssertLoginError fails unless a login error is displayed. With a
// non-empty expected string the error text must contain it.
func (l *LoginPage) AssertLoginError(expected string) error {
	if err := l.AssertVisible(errorMessage); err != nil {
		return err
	}
	if expected != "" {
		return l.AssertTextContains(errorMessage, expected)
	}
	return nil
}
