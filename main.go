package main

import "github.com/kamusis/studymatch/cmd"

func main() {
	cmd.Execute()
}
