// Command sheetcheck validates tabular files from the command line.
package main

import "github.com/JonMunkholm/sheetcheck/internal/cli"

func main() {
	cli.Main()
}
