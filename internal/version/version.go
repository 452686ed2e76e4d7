// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Serve mode: REST catalog and websocket surface stream
// 0.2.0 - Guide panel (descriptions, Q&A) and archive images
// 0.1.0 - Initial release: orbital view, walkable surfaces, headless export

// UserAgent is sent with outbound HTTP requests.
func UserAgent() string {
	return "cosmos-walker/" + Version
}
