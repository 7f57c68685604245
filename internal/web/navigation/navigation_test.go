package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Find your next job", "jobs", false)

	assert.Equal(t, "Find your next job", ctx.PageTitle)
	assert.Equal(t, "jobs", ctx.ActivePage)
	assert.NotEmpty(t, ctx.Items)
}

func TestNewContext_AnonymousLinks(t *testing.T) {
	ctx := NewContext("Find your next job", "jobs", false)

	titles := make([]string, 0, len(ctx.Items))
	for _, item := range ctx.Items {
		titles = append(titles, item.Title)
	}

	assert.Contains(t, titles, "Log in")
	assert.Contains(t, titles, "Sign up")
	assert.NotContains(t, titles, "Dashboard")
}

func TestNewContext_SignedInLinks(t *testing.T) {
	ctx := NewContext("Dashboard", "dashboard", true)

	titles := make([]string, 0, len(ctx.Items))
	for _, item := range ctx.Items {
		titles = append(titles, item.Title)
	}

	assert.Contains(t, titles, "Dashboard")
	assert.Contains(t, titles, "Log out")
	assert.NotContains(t, titles, "Log in")
}

func TestNewContext_ActiveItem(t *testing.T) {
	ctx := NewContext("Dashboard", "dashboard", true)

	for _, item := range ctx.Items {
		if item.Title == "Dashboard" {
			assert.True(t, item.Active)
		} else {
			assert.False(t, item.Active, item.Title)
		}
	}
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Dashboard", "dashboard", true)

	assert.True(t, ctx.IsActive("dashboard"))
	assert.False(t, ctx.IsActive("jobs"))
}
