// Package services defines the shared error taxonomy for replay's external
// collaborators. Remote-API, configuration, and validation failures are tagged
// with sentinel markers so callers can classify them with errors.Is without
// inspecting message text.
package services
