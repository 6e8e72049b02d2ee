package main

import "github.com/imbizlab/groomflo-app/cmd"

func main() {
	cmd.Execute()
}
