package main

import "fleetcheck/cmd"

func main() {
	cmd.Execute()
}
