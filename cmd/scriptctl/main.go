package main

import "scriptaffiliator/cmd/scriptctl/commands"

func main() {
	commands.Execute()
}
