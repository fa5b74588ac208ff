// Package events contains message types shared between the config watcher and the tui package.
package events

import "projpal/internal/config"

// ConfigChangedMsg is sent when the config file on disk was reloaded.
type ConfigChangedMsg struct {
	Config config.Config
}
