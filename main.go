// The main package for the webscraper executable.
package main

import "github.com/paulosgsf/typingmind-webscraper/cmd"

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
