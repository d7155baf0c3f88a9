package main

import "github.com/fragrancepalette/backend/cmd"

func main() {
	cmd.Execute()
}
