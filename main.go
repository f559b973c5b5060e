package main

import "github.com/keepsync/keepsync/cmd"

func main() {
	cmd.Execute()
}
