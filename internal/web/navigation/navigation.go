// Package navigation provides the top navigation state for page rendering.
package navigation

// Item represents a single navigation link.
type Item struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	PageTitle  string
	ActivePage string
	Items      []Item
}

// NewContext creates the navigation context for a page. signedIn switches
// between the anonymous and the account links.
func NewContext(pageTitle, activePage string, signedIn bool) *Context {
	c := &Context{
		PageTitle:  pageTitle,
		ActivePage: activePage,
	}

	c.addItem("Jobs", "/jobs", "jobs")
	c.addItem("Post a job", "/jobs/new", "job-new")

	if signedIn {
		c.addItem("Dashboard", "/dashboard", "dashboard")
		c.addItem("Log out", "/logout", "logout")
	} else {
		c.addItem("Log in", "/auth/login", "login")
		c.addItem("Sign up", "/auth/signup", "signup")
	}

	return c
}

func (c *Context) addItem(title, url, page string) {
	c.Items = append(c.Items, Item{
		Title:  title,
		URL:    url,
		Active: page == c.ActivePage,
	})
}

// IsActive checks if the given page matches the current context.
func (c *Context) IsActive(page string) bool {
	return c.ActivePage == page
}
