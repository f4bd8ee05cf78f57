package main

import "github.com/watchsub/watchsub/cmd"

func main() {
	cmd.Execute()
}
