// Package main is the entry point for the pagecraft API server.
package main

func main() {
	Execute()
}
