package main

import "rootforge/cmd/rootforge-cli/cmd"

func main() {
	cmd.Execute()
}
