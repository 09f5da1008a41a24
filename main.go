package main

import "takabot/cmd"

func main() {
	cmd.Execute()
}
