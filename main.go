package main

import "github.com/Tiliavir/jobmon/cmd"

func main() {
	cmd.Execute()
}
