package main

import "github.com/rivalapexmediation/reconciler/cmd"

func main() {
	cmd.Execute()
}
