package main

import "github.com/nextlevelbuilder/pagepilot/cmd"

func main() {
	cmd.Execute()
}
