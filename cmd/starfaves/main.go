package main

import "github.com/marshallshelly/starfaves/cmd/starfaves/commands"

func main() {
	commands.Execute()
}
