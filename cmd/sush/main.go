// Package main is the entry point of the sush shell application.
package main

import "sush/internal/shell"

func main() {
	shell.Run()
}
