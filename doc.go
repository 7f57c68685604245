// Package main provides the entry point for the JobBoard application.
// It initializes and runs a web server using the Fiber framework where users
// browse and search job postings, create an account through an external
// identity provider, and manage their own postings through a dashboard.
// The application uses gorm for data persistence and server side sessions
// backed by a pluggable storage.
package main
