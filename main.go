package main

import "github.com/samsaffron/term-transcript/cmd"

func main() {
	cmd.Execute()
}
