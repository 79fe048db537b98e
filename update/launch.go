package update

import (
	"ota-checker-go/internal"

	"github.com/pkg/browser"
)

var openURL = browser.OpenURL

// LaunchURL opens url in the user's browser. An empty URL does nothing.
func LaunchURL(url string) error {
	if url == "" {
		return nil
	}
	internal.DebugPrint("Opening %s", url)
	return openURL(url)
}
