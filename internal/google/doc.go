// Package google centralizes service-account authentication for the
// Google APIs the archival layer uses (Drive and Sheets).
//
// The pipeline runs headless, so authentication is a service-account JSON
// key file rather than an interactive OAuth flow. ServiceOptions turns the
// configured key file and scopes into the option.ClientOption slice each
// service constructor consumes.
package google
