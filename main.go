package main

import "github.com/Johnny-Taake/docpipe/cmd"

func main() {
	cmd.Execute()
}
