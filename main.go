package main

import "enrollment-manager/cmd"

func main() {
	cmd.Execute()
}
