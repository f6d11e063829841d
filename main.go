package main

import "github.com/speedrun-hq/lzbridger/cmd"

func main() {
	cmd.Execute()
}
