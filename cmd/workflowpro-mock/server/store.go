package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// project is the stored representation of a project resource.
type project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	TeamMembers []string `json:"team_members"`
	TenantID    string   `json:"tenant_id"`
}

// store holds all mutable mock state. Projects live in per-tenant maps so a
// lookup can never cross a tenant boundary by construction.
type store struct {
	mu       sync.Mutex
	projects map[string]map[string]*project // tenant -> id -> project
	users    map[string]map[string]string   // tenant -> email -> password
	refresh  map[string]refreshRecord       // refresh token -> identity
}

type refreshRecord struct {
	tenantID string
	email    string
}

// newStore seeds the static tenant registry: three tenants, each with
// admin, manager, and employee users sharing the default test password.
func newStore() *store {
	s := &store{
		projects: make(map[string]map[string]*project),
		users:    make(map[string]map[string]string),
		refresh:  make(map[string]refreshRecord),
	}
	for _, tenant := range []string{"company1", "company2", "company3"} {
		s.projects[tenant] = make(map[string]*project)
		s.users[tenant] = map[string]string{
			"admin@" + tenant + ".com":    "password123",
			"manager@" + tenant + ".com":  "password123",
			"employee@" + tenant + ".com": "password123",
		}
	}
	return s
}

// authenticate checks credentials for a tenant. Unknown tenants and wrong
// passwords are indistinguishable to the caller.
func (s *store) authenticate(tenantID, email, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.users[tenantID]
	if !ok {
		return false
	}
	want, ok := users[email]
	return ok && want == password
}

// issueRefresh mints a refresh token bound to the identity.
func (s *store) issueRefresh(tenantID, email string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.refresh[token] = refreshRecord{tenantID: tenantID, email: email}
	s.mu.Unlock()
	return token
}

// redeemRefresh resolves a refresh token to its identity.
func (s *store) redeemRefresh(token string) (refreshRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.refresh[token]
	return rec, ok
}

func (s *store) createProject(tenantID, name, description string, members []string) *project {
	if members == nil {
		members = []string{}
	}
	p := &project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      "active",
		TeamMembers: members,
		TenantID:    tenantID,
	}
	s.mu.Lock()
	s.projects[tenantID][p.ID] = p
	s.mu.Unlock()
	return p
}

func (s *store) getProject(tenantID, id string) (*project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[tenantID][id]
	return p, ok
}

// listProjects returns one page of the tenant's projects ordered by name,
// plus the total count.
func (s *store) listProjects(tenantID string, page, limit int) ([]*project, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*project, 0, len(s.projects[tenantID]))
	for _, p := range s.projects[tenantID] {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return []*project{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total
}

func (s *store) deleteProject(tenantID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[tenantID][id]; !ok {
		return false
	}
	delete(s.projects[tenantID], id)
	return true
}

func (s *store) addMember(tenantID, id, email string) (*project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[tenantID][id]
	if !ok {
		return nil, false
	}
	for _, m := range p.TeamMembers {
		if strings.EqualFold(m, email) {
			return p, true
		}
	}
	p.TeamMembers = append(p.TeamMembers, email)
	return p, true
}

func (s *store) removeMember(tenantID, id, email string) (*project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[tenantID][id]
	if !ok {
		return nil, false
	}
	kept := p.TeamMembers[:0]
	for _, m := range p.TeamMembers {
		if !strings.EqualFold(m, email) {
			kept = append(kept, m)
		}
	}
	p.TeamMembers = kept
	return p, true
}
