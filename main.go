package main

import "github.com/fakeyudi/focuswatch/cmd"

func main() {
	cmd.Execute()
}
