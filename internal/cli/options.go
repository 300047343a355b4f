package cli

import "time"

type Options struct {
	JSON      bool
	Timeout   time.Duration
	ExportDir string
}
