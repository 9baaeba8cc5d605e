package main

import "github.com/jjenkins/servetrack/cmd"

func main() {
	cmd.Execute()
}
