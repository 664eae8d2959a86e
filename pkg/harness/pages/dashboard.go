package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Dashboard selectors.
const (
	welcomeMessage    = ".welcome-message"
	projectCard       = ".project-card"
	projectName       = ".project-name"
	projectsContainer = ".projects-container"
	createProjectBtn  = ".create-project-btn"
	logoutBtn         = "#logout-btn"
	settingsLink      = ".settings-link"
)

// DashboardPage drives the post-login dashboard: project visibility,
// navigation, and tenant-isolation queries.
type DashboardPage struct {
	*BasePage
}

// NewDashboardPage wraps a page already heading to the dashboard.
func NewDashboardPage(page *rod.Page) *DashboardPage {
	return &DashboardPage{BasePage: NewBasePage(page)}
}

// WaitForDashboard blocks until the dashboard URL is reached and the page
// has settled.
func (d *DashboardPage) WaitForDashboard(timeout ...time.Duration) error {
	if err := d.WaitForURLContains("/dashboard", timeout...); err != nil {
		return err
	}
	return d.WaitSettled()
}

// IsDashboardLoaded reports whether the dashboard loads within a short
// window.
func (d *DashboardPage) IsDashboardLoaded() bool {
	return d.WaitForDashboard(5*time.Second) == nil
}

// WelcomeMessage returns the welcome banner text, or "" when absent.
func (d *DashboardPage) WelcomeMessage() string {
	if !d.IsVisible(welcomeMessage) {
		return ""
	}
	text, err := d.GetText(welcomeMessage)
	if err != nil {
		return ""
	}
	return text
}

// IsProjectVisible reports whether a project card with the given name is
// currently rendered.
func (d *DashboardPage) IsProjectVisible(name string) (bool, error) {
	if err := d.WaitSettled(); err != nil {
		return false, err
	}
	cards, err := d.Page().Elements(projectCard)
	if err != nil {
		return false, fmt.Errorf("query project cards: %w", err)
	}
	for _, card := range cards {
		text, err := card.Text()
		if err != nil {
			continue
		}
		if strings.Contains(text, name) {
			return true, nil
		}
	}
	return false, nil
}

// GetAllProjectNames returns the names of all rendered project cards. A
// card without a name element contributes its full text instead.
func (d *DashboardPage) GetAllProjectNames() ([]string, error) {
	if err := d.WaitSettled(); err != nil {
		return nil, err
	}
	cards, err := d.Page().Elements(projectCard)
	if err != nil {
		return nil, fmt.Errorf("query project cards: %w", err)
	}
	names := make([]string, 0, len(cards))
	for _, card := range cards {
		if has, nameEl, err := card.Has(projectName); err == nil && has {
			text, err := nameEl.Text()
			if err != nil {
				return nil, fmt.Errorf("read project name: %w", err)
			}
			names = append(names, text)
			continue
		}
		text, err := card.Text()
		if err != nil {
			return nil, fmt.Errorf("read project card: %w", err)
		}
		names = append(names, text)
	}
	return names, nil
}

// GetProjectCount returns the number of rendered project cards.
func (d *DashboardPage) GetProjectCount() (int, error) {
	if err := d.WaitSettled(); err != nil {
		return 0, err
	}
	cards, err := d.Page().Elements(projectCard)
	if err != nil {
		return 0, fmt.Errorf("query project cards: %w", err)
	}
	return len(cards), nil
}

// VerifyNoCrossTenantData scans every rendered project card for the
// excluded tenant's marker string. This proves UI-level leakage only; the
// corresponding API-level check is required to prove server-side
// enforcement.
func (d *DashboardPage) VerifyNoCrossTenantData(excludedTenantMarker string) (bool, error) {
	if err := d.WaitSettled(); err != nil {
		return false, err
	}
	cards, err := d.Page().Elements(projectCard)
	if err != nil {
		return false, fmt.Errorf("query project cards: %w", err)
	}
	for _, card := range cards {
		text, err := card.Text()
		if err != nil {
			return false, fmt.Errorf("read project card: %w", err)
		}
		if strings.Contains(text, excludedTenantMarker) {
			return false, nil
		}
	}
	return true, nil
}

// ClickProject opens a project by clicking its card.
func (d *DashboardPage) ClickProject(name string) error {
	cards, err := d.Page().Elements(projectCard)
	if err != nil {
		return fmt.Errorf("query project cards: %w", err)
	}
	for _, card := range cards {
		text, err := card.Text()
		if err != nil {
			continue
		}
		if strings.Contains(text, name) {
			return card.Click(proto.InputMouseButtonLeft, 1)
		}
	}
	return &AssertionError{Selector: projectCard, Condition: fmt.Sprintf("card containing %q", name)}
}

// ClickCreateProject clicks the create-project button.
func (d *DashboardPage) ClickCreateProject() error {
	return d.Click(createProjectBtn)
}

// Logout logs out and waits for the login page.
func (d *DashboardPage) Logout() error {
	if err := d.Click(logoutBtn); err != nil {
		return err
	}
	return d.WaitForURLContains("/login")
}

// NavigateToSettings opens the settings page from the sidebar.
func (d *DashboardPage) NavigateToSettings() error {
	if err := d.Click(settingsLink); err != nil {
		return err
	}
	return d.WaitForURLContains("/settings")
}
