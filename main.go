package main

import "github.com/ValentinKolb/bracketd/cmd"

func main() {
	cmd.Execute()
}
