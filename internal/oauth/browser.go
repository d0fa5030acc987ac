package oauth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser launches the system browser at url without waiting for it
// to exit. A launch failure is recoverable: callers surface the URL so
// the user can open it manually.
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	if name == "" {
		return fmt.Errorf("no known browser launcher for %s", runtime.GOOS)
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	return nil
}

// browserCommand maps the platform to its URL-open command. An empty
// name means the platform has no known launcher.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "linux":
		return "xdg-open", []string{url}
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", url}
	default:
		return "", nil
	}
}
