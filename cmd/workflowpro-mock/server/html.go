package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleLoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginHTML))
}

func (s *Server) handleDashboardPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardHTML))
}

func (s *Server) handleSettingsPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(settingsHTML))
}

// loginHTML is the login screen the browser flows drive. The tenant is
// derived from the email's domain (admin@company1.com -> company1), the
// same convention the seeded user registry uses.
const loginHTML = `<!DOCTYPE html>
<html>
<head>
    <title>WorkFlow Pro - Sign In</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 400px;
            margin: 80px auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .login-box {
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 { color: #333; font-size: 22px; }
        input {
            width: 100%;
            padding: 10px;
            margin: 8px 0;
            border: 1px solid #ccc;
            border-radius: 4px;
            box-sizing: border-box;
        }
        button {
            width: 100%;
            background: #4285f4;
            color: white;
            border: none;
            padding: 12px;
            border-radius: 4px;
            cursor: pointer;
            font-size: 16px;
            margin-top: 10px;
        }
        button:hover { background: #3367d6; }
        .error-message {
            display: none;
            background: #f8d7da;
            color: #721c24;
            padding: 12px;
            border-radius: 4px;
            margin-top: 12px;
        }
        #two-fa-block { display: none; }
    </style>
</head>
<body>
    <div class="login-box">
        <h1>Sign in to WorkFlow Pro</h1>
        <input id="email" type="email" placeholder="Email">
        <input id="password" type="password" placeholder="Password">
        <button id="login-btn">Sign In</button>
        <div id="two-fa-block">
            <input id="two-fa-code" type="text" placeholder="Authentication code">
            <button id="two-fa-submit">Verify</button>
        </div>
        <div class="error-message"></div>
    </div>
    <script>
        function tenantFromEmail(email) {
            var domain = email.split('@')[1] || '';
            return domain.split('.')[0];
        }

        function showError(text) {
            var el = document.querySelector('.error-message');
            el.textContent = text;
            el.style.display = 'block';
        }

        function submitLogin(code) {
            var email = document.getElementById('email').value;
            var body = {
                email: email,
                password: document.getElementById('password').value
            };
            if (code) body.two_fa_code = code;

            fetch('/auth/login', {
                method: 'POST',
                headers: {
                    'Content-Type': 'application/json',
                    'X-Tenant-ID': tenantFromEmail(email)
                },
                body: JSON.stringify(body)
            }).then(function(resp) {
                return resp.json().then(function(data) {
                    if (resp.ok) {
                        localStorage.setItem('access_token', data.access_token);
                        localStorage.setItem('tenant_id', tenantFromEmail(email));
                        localStorage.setItem('email', email);
                        window.location.href = '/dashboard';
                        return;
                    }
                    if (data.requires_2fa) {
                        document.getElementById('two-fa-block').style.display = 'block';
                        return;
                    }
                    showError(data.error || 'Login failed');
                });
            }).catch(function() {
                showError('Service unavailable');
            });
        }

        document.getElementById('login-btn').addEventListener('click', function() {
            submitLogin(null);
        });
        document.getElementById('two-fa-submit').addEventListener('click', function() {
            submitLogin(document.getElementById('two-fa-code').value);
        });
    </script>
</body>
</html>`

// dashboardHTML renders the tenant's projects from the API using the token
// stored at login. Each project becomes a .project-card with a
// .project-name child, the structure the dashboard page object scans.
const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
    <title>WorkFlow Pro - Dashboard</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            margin: 0;
            background: #f5f5f5;
        }
        .sidebar {
            position: fixed;
            width: 200px;
            height: 100%;
            background: #2d3748;
            color: white;
            padding: 20px;
            box-sizing: border-box;
        }
        .sidebar a { color: #cbd5e0; display: block; margin: 10px 0; }
        .main { margin-left: 200px; padding: 30px; }
        .welcome-message { font-size: 20px; color: #333; margin-bottom: 20px; }
        .projects-container {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
        }
        .project-card {
            background: white;
            padding: 20px;
            border-radius: 8px;
            width: 220px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .project-name { font-weight: 600; color: #333; }
        .project-status { color: #666; font-size: 13px; margin-top: 8px; }
        .create-project-btn {
            background: #4285f4;
            color: white;
            border: none;
            padding: 10px 20px;
            border-radius: 4px;
            cursor: pointer;
            margin-bottom: 20px;
        }
        #logout-btn {
            background: transparent;
            color: #cbd5e0;
            border: 1px solid #cbd5e0;
            padding: 6px 12px;
            border-radius: 4px;
            cursor: pointer;
            margin-top: 20px;
        }
    </style>
</head>
<body>
    <div class="sidebar">
        <h2>WorkFlow Pro</h2>
        <a class="settings-link" href="/settings">Settings</a>
        <button id="logout-btn">Log out</button>
    </div>
    <div class="main">
        <div class="welcome-message"></div>
        <button class="create-project-btn">New Project</button>
        <div class="projects-container"></div>
    </div>
    <script>
        var token = localStorage.getItem('access_token');
        var tenant = localStorage.getItem('tenant_id');
        var email = localStorage.getItem('email');

        if (!token) {
            window.location.href = '/login';
        } else {
            document.querySelector('.welcome-message').textContent = 'Welcome, ' + email;

            fetch('/api/v1/projects?page=1&limit=100', {
                headers: {
                    'Authorization': 'Bearer ' + token,
                    'X-Tenant-ID': tenant
                }
            }).then(function(resp) {
                if (!resp.ok) throw new Error('unauthorized');
                return resp.json();
            }).then(function(data) {
                var container = document.querySelector('.projects-container');
                data.projects.forEach(function(p) {
                    var card = document.createElement('div');
                    card.className = 'project-card';
                    card.innerHTML = '<div class="project-name"></div><div class="project-status"></div>';
                    card.querySelector('.project-name').textContent = p.name;
                    card.querySelector('.project-status').textContent = p.status;
                    container.appendChild(card);
                });
            }).catch(function() {
                window.location.href = '/login';
            });
        }

        document.getElementById('logout-btn').addEventListener('click', function() {
            localStorage.clear();
            window.location.href = '/login';
        });
    </script>
</body>
</html>`

const settingsHTML = `<!DOCTYPE html>
<html>
<head><title>WorkFlow Pro - Settings</title></head>
<body>
    <h1 class="settings-title">Settings</h1>
    <p>Tenant settings are managed by your administrator.</p>
</body>
</html>`
