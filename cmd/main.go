package main

import "github.com/kerbaras/comics/cmd/comics"

func main() {
	comics.Execute()
}
