package main

import "tinyflow/cmd"

func main() {
	cmd.Execute()
}
