package main

import (
	"github.com/calendarai/calendarai/cmd"
)

// version はビルド時に -ldflags で設定される
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
