package main

import (
	"fmt"
	"os"

	"mcbeam/app"
)

func main() {
	cmd := app.AllCommands()
	err := cmd.Dispatch(os.Args[1:])
	if err != nil {
		fmt.Printf("**err**: %v\n", err)
		os.Exit(1)
	}
}
