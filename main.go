package main

import "reelcut/cmd"

func main() {
	cmd.Execute()
}
